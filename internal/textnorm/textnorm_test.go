package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	assert.Equal(t, "محامٍ متخصص & خبير", Clean("  <b>محامٍ</b>   متخصص &amp; خبير<script>alert(1)</script> "))
	assert.Equal(t, "", Clean("<img src=x onerror=alert(1)>"))
}

func TestCleanMultiline(t *testing.T) {
	in := "البند الأول:  <i>الطرف</i> الأول\r\nالبند   الثاني"
	assert.Equal(t, "البند الأول: الطرف الأول\nالبند الثاني", CleanMultiline(in))
}

func TestCleanList(t *testing.T) {
	assert.Equal(t, []string{"CLP", "شهادة"}, CleanList([]string{" CLP ", "<p></p>", "شهادة"}))
}

func TestFold(t *testing.T) {
	cases := map[string]string{
		"أحمد":         "احمد",
		"إبراهيم":      "ابراهيم",
		"آمنة":         "امنه",
		"مُحَمَّد":     "محمد",
		"مصطفى":        "مصطفي",
		"عبـــدالله":   "عبدالله",
		"  Sara  LEE ": "sara lee",
		"José":         "jose",
	}
	for in, want := range cases {
		assert.Equalf(t, want, Fold(in), "Fold(%q)", in)
	}
	assert.Equal(t, Fold("فاطمة الزهراء"), Fold("فاطمه الزهراء"))
}

func TestPhone(t *testing.T) {
	assert.Equal(t, "+966501234567", Phone("050 123 4567"))
	assert.Equal(t, "+966501234567", Phone("00966501234567"))
	assert.Equal(t, "+966501234567", Phone("+966 50 123 4567"))
	assert.Equal(t, "", Phone("  "))
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "sara@wakili.sa", Email("  Sara@Wakili.SA "))
}

func TestCodes(t *testing.T) {
	got := Codes([]string{"commercial", " Commercial", "COMMERCIAL ", "", "labor", "commercial", "commercial"})
	assert.Equal(t, []string{"commercial", "labor"}, got)
	assert.Empty(t, Codes(nil))
}
