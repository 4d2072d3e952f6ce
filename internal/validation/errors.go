// Package validation collects per-field rule violations and renders them in
// the caller's language.
package validation

import (
	"sort"
	"strings"

	"github.com/wakili/backend/internal/i18n"
)

// FieldError is one failed rule. Code is a message catalog key.
type FieldError struct {
	Field  string
	Code   string
	Params map[string]any
}

// Errors is an ordered set of field errors, at most one per field.
type Errors struct {
	fields []FieldError
}

// New returns an empty error set.
func New() *Errors {
	return &Errors{}
}

// Add records a violation unless field already has one.
func (e *Errors) Add(field, code string, params map[string]any) {
	if e.Has(field) {
		return
	}
	e.fields = append(e.fields, FieldError{Field: field, Code: code, Params: params})
}

// Check records code against field when ok is false and reports ok.
func (e *Errors) Check(ok bool, field, code string, params map[string]any) bool {
	if !ok {
		e.Add(field, code, params)
	}
	return ok
}

// Has reports whether field already failed a rule.
func (e *Errors) Has(field string) bool {
	for _, fe := range e.fields {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Merge copies the errors of other into e, prefixing field names.
func (e *Errors) Merge(prefix string, other *Errors) {
	if other == nil {
		return
	}
	for _, fe := range other.fields {
		name := fe.Field
		if prefix != "" {
			name = prefix + "." + name
		}
		e.Add(name, fe.Code, fe.Params)
	}
}

// Fields returns a copy of the recorded errors in insertion order.
func (e *Errors) Fields() []FieldError {
	if e == nil {
		return nil
	}
	return append([]FieldError(nil), e.fields...)
}

// Code returns the rule code recorded for field, or "".
func (e *Errors) Code(field string) string {
	for _, fe := range e.fields {
		if fe.Field == field {
			return fe.Code
		}
	}
	return ""
}

// Empty reports whether no rule failed.
func (e *Errors) Empty() bool {
	return e == nil || len(e.fields) == 0
}

// Err returns e as an error, or nil when empty.
func (e *Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *Errors) Error() string {
	parts := make([]string, 0, len(e.fields))
	for _, fe := range e.fields {
		parts = append(parts, fe.Field+": "+fe.Code)
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, ", ")
}

// Localize renders the messages of every failed field in lang.
func (e *Errors) Localize(catalog *i18n.Catalog, lang string) map[string]string {
	out := make(map[string]string, len(e.fields))
	for _, fe := range e.fields {
		out[fe.Field] = catalog.Message(lang, fe.Code, fe.Params)
	}
	return out
}

// Single builds an error set holding one violation.
func Single(field, code string, params map[string]any) *Errors {
	e := New()
	e.Add(field, code, params)
	return e
}

// Range is shorthand for a {min, max} parameter map.
func Range(min, max any) map[string]any {
	return map[string]any{"min": min, "max": max}
}

// Min is shorthand for a {min} parameter map.
func Min(min any) map[string]any {
	return map[string]any{"min": min}
}

// Max is shorthand for a {max} parameter map.
func Max(max any) map[string]any {
	return map[string]any{"max": max}
}
