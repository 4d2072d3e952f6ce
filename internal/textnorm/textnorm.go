// Package textnorm cleans user supplied free text and builds accent-folded
// search keys for Arabic and Latin names.
package textnorm

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	nonDigitRegex   = regexp.MustCompile(`\D+`)

	// bluemonday policies are safe for concurrent use once built.
	strict = bluemonday.StrictPolicy()

	// Letters NFD leaves alone but users type interchangeably.
	arabicLetterFold = strings.NewReplacer(
		"ة", "ه",
		"ى", "ي",
		"ٱ", "ا",
		"ـ", "",
	)
)

// Clean strips every HTML tag and collapses runs of whitespace.
func Clean(value string) string {
	value = html.UnescapeString(strict.Sanitize(value))
	return Collapse(value)
}

// CleanMultiline strips HTML but keeps line breaks, for long form text such
// as contracts.
func CleanMultiline(value string) string {
	value = html.UnescapeString(strict.Sanitize(value))
	lines := strings.Split(strings.ReplaceAll(value, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = Collapse(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Collapse trims value and replaces inner whitespace runs with one space.
func Collapse(value string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(value, " "))
}

// CleanList applies Clean to every entry and drops the empty ones.
func CleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = Clean(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Fold builds a search key: diacritics (harakat, hamza and madda marks)
// removed, alef/ta-marbuta/alef-maqsura variants unified, lower-cased.
func Fold(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		folded = value
	}
	folded = arabicLetterFold.Replace(folded)
	return strings.ToLower(Collapse(folded))
}

// Email lower-cases and trims an address.
func Email(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// Phone reduces a number to digits with a leading plus. Saudi local numbers
// (05xxxxxxxx) are rewritten to +9665xxxxxxxx.
func Phone(phone string) string {
	phone = nonDigitRegex.ReplaceAllString(strings.TrimSpace(phone), "")
	if phone == "" {
		return ""
	}
	if strings.HasPrefix(phone, "00") {
		phone = phone[2:]
	} else if strings.HasPrefix(phone, "05") && len(phone) == 10 {
		phone = "966" + phone[1:]
	}
	return "+" + phone
}

// Codes lower-cases and trims machine codes such as practice areas and
// language tags, dropping empty and repeated entries. First occurrence order
// is kept.
func Codes(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
