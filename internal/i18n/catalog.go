// Package i18n serves the bilingual (Arabic/English) message catalog and
// negotiates the response language of a request.
package i18n

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	Arabic  = "ar"
	English = "en"
)

//go:embed messages.yaml
var catalogYAML []byte

var supported = []language.Tag{language.Arabic, language.English}

var matcher = language.NewMatcher(supported)

// Catalog resolves message keys to localised text.
type Catalog struct {
	messages map[string]map[string]string
	fallback string
}

// Load parses the embedded catalog. fallback is used when a key is missing
// in the requested language.
func Load(fallback string) (*Catalog, error) {
	var messages map[string]map[string]string
	if err := yaml.Unmarshal(catalogYAML, &messages); err != nil {
		return nil, fmt.Errorf("parse message catalog: %w", err)
	}
	if _, ok := messages[fallback]; !ok {
		return nil, fmt.Errorf("message catalog has no %q section", fallback)
	}
	return &Catalog{messages: messages, fallback: fallback}, nil
}

// MustLoad is Load for package initialisation and tests.
func MustLoad(fallback string) *Catalog {
	c, err := Load(fallback)
	if err != nil {
		panic(err)
	}
	return c
}

// Message returns the text for key in lang with {name} placeholders
// substituted from params. Unknown keys come back verbatim.
func (c *Catalog) Message(lang, key string, params map[string]any) string {
	text, ok := c.messages[lang][key]
	if !ok {
		text, ok = c.messages[c.fallback][key]
	}
	if !ok {
		return key
	}
	if len(params) == 0 {
		return text
	}
	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Has reports whether key exists in the fallback language.
func (c *Catalog) Has(key string) bool {
	_, ok := c.messages[c.fallback][key]
	return ok
}

// Negotiate picks "ar" or "en" from an Accept-Language header value.
// fallback is returned when the header is empty or matches neither.
func Negotiate(acceptLanguage, fallback string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// Normalize maps free-form input ("AR", "en-US") to a supported language or "".
func Normalize(lang string) string {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	switch base.String() {
	case Arabic:
		return Arabic
	case English:
		return English
	}
	return ""
}
