package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Message(t *testing.T) {
	c, err := Load(Arabic)
	require.NoError(t, err)

	assert.Equal(t, "هذا الحقل مطلوب", c.Message(Arabic, "required", nil))
	assert.Equal(t, "Must be at least 3 characters", c.Message(English, "min_length", map[string]any{"min": 3}))
	assert.Equal(t, "Year must be between 1950 and 2026", c.Message(English, "year_range", map[string]any{"min": 1950, "max": 2026}))
	assert.Equal(t, "no_such_key", c.Message(English, "no_such_key", nil))
	// unknown language falls back to Arabic
	assert.Equal(t, c.Message(Arabic, "not_found", nil), c.Message("fr", "not_found", nil))
}

func TestCatalog_LanguagesHaveSameKeys(t *testing.T) {
	c := MustLoad(Arabic)
	require.Len(t, c.messages, 2)
	for key := range c.messages[Arabic] {
		_, ok := c.messages[English][key]
		assert.Truef(t, ok, "english catalog missing %q", key)
	}
	for key := range c.messages[English] {
		_, ok := c.messages[Arabic][key]
		assert.Truef(t, ok, "arabic catalog missing %q", key)
	}
}

func TestLoad_UnknownFallback(t *testing.T) {
	_, err := Load("de")
	require.Error(t, err)
}

func TestNegotiate(t *testing.T) {
	cases := []struct {
		header, fallback, want string
	}{
		{"", Arabic, Arabic},
		{"", English, English},
		{"en-US,en;q=0.9", Arabic, English},
		{"ar-SA", English, Arabic},
		{"fr-FR,en;q=0.5", Arabic, English},
		{"de-DE", Arabic, Arabic},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, Negotiate(tc.header, tc.fallback), "Negotiate(%q, %q)", tc.header, tc.fallback)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Arabic, Normalize("AR"))
	assert.Equal(t, English, Normalize("en-GB"))
	assert.Equal(t, "", Normalize("fr"))
	assert.Equal(t, "", Normalize(""))
}
