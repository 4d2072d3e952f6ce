package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	minPasswordChars = 8
	maxPasswordChars = 72
	// bcrypt ignores input beyond 72 bytes.
	maxPasswordBytes = 72
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

// IsPhone accepts 9..15 digits with an optional leading plus.
func IsPhone(s string) bool {
	return phonePattern.MatchString(stripPhoneSeparators(s))
}

func stripPhoneSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '(' || r == ')' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// StrongPassword requires 8..72 characters with at least one letter and one
// digit. Multi-byte passwords are further capped at 72 bytes.
func StrongPassword(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < minPasswordChars || n > maxPasswordChars || len(s) > maxPasswordBytes {
		return false
	}
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

// AgeOn returns the age in whole years of someone born on dob at now.
func AgeOn(dob, now time.Time) int {
	dob = dob.UTC()
	now = now.UTC()
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}
