package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/wakili/backend/internal/domain"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so errors line up with request bodies.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return lowerFirst(fld.Name)
		}
		return name
	})

	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
	mustRegister(v, "password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	mustRegister(v, "specialization", func(fl validator.FieldLevel) bool {
		return domain.IsSpecialization(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// Struct runs the `validate` tags of s and returns one error per failing
// field, keyed by the field's JSON name. A `msg` struct tag replaces the
// code of every failure other than required.
func Struct(s any) *Errors {
	errs := New()
	fieldErrs, ok := asFieldErrors(validate.Struct(s))
	if !ok {
		return errs
	}
	root := reflect.TypeOf(s)
	for _, fe := range fieldErrs {
		var rules, msg string
		if sf, found := lookupField(root, fe.StructNamespace()); found {
			element := strings.HasSuffix(fe.StructNamespace(), "]")
			rules = ruleSegment(sf.Tag.Get("validate"), element)
			msg = sf.Tag.Get("msg")
		}
		code, params := describe(fe.Tag(), fe.Kind(), rules, msg)
		errs.Add(stripIndex(fe.Field()), code, params)
	}
	return errs
}

// Var checks a single value against tags, recording the first failure under
// field. It reports whether value passed.
func (e *Errors) Var(field string, value any, tags string) bool {
	fieldErrs, ok := asFieldErrors(validate.Var(value, tags))
	if !ok {
		return true
	}
	fe := fieldErrs[0]
	element := fe.Kind() != reflect.ValueOf(value).Kind()
	code, params := describe(fe.Tag(), fe.Kind(), ruleSegment(tags, element), "")
	e.Add(field, code, params)
	return false
}

func asFieldErrors(err error) (validator.ValidationErrors, bool) {
	if err == nil {
		return nil, false
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		// Only reachable with a nil or non-struct argument.
		panic(fmt.Sprintf("validation: %v", err))
	}
	return fieldErrs, true
}

// describe maps a failed tag onto a message catalog code.
func describe(tag string, kind reflect.Kind, rules, msg string) (string, map[string]any) {
	if msg != "" && tag != "required" {
		return msg, nil
	}
	switch tag {
	case "required":
		return "required", nil
	case "email":
		return "invalid_email", nil
	case "phone":
		return "invalid_phone", nil
	case "http_url", "url":
		return "invalid_url", nil
	case "password":
		return "weak_password", nil
	case "eqfield":
		return "password_mismatch", nil
	case "unique":
		return "duplicate_items", nil
	case "min", "max", "gte", "lte", "len":
		return boundsCode(kind, parseBounds(rules))
	}
	return "invalid_choice", nil
}

type bounds struct {
	lo, hi       any
	hasLo, hasHi bool
}

func parseBounds(rules string) bounds {
	var b bounds
	for _, rule := range strings.Split(rules, ",") {
		name, param, _ := strings.Cut(rule, "=")
		switch name {
		case "min", "gte":
			b.lo, b.hasLo = number(param), true
		case "max", "lte":
			b.hi, b.hasHi = number(param), true
		case "len":
			n := number(param)
			b.lo, b.hi, b.hasLo, b.hasHi = n, n, true, true
		}
	}
	return b
}

func boundsCode(kind reflect.Kind, b bounds) (string, map[string]any) {
	switch kind {
	case reflect.String:
		switch {
		case b.hasLo && b.hasHi:
			return "length_between", Range(b.lo, b.hi)
		case b.hasHi:
			return "max_length", Max(b.hi)
		}
		return "min_length", Min(b.lo)
	case reflect.Slice, reflect.Array, reflect.Map:
		switch {
		case b.hasLo && b.hasHi:
			return "items_between", Range(b.lo, b.hi)
		case b.hasHi:
			return "too_many_items", Max(b.hi)
		}
		// a minimum of one item reads as "required" to the user
		return "required", nil
	}
	return "number_range", Range(b.lo, b.hi)
}

func number(param string) any {
	if n, err := strconv.Atoi(param); err == nil {
		return n
	}
	f, _ := strconv.ParseFloat(param, 64)
	return f
}

// ruleSegment returns the rules that apply to the field itself, or to its
// elements when the failure came from behind a dive.
func ruleSegment(tag string, element bool) string {
	if elem, ok := strings.CutPrefix(tag, "dive,"); ok {
		if element {
			return elem
		}
		return ""
	}
	field, elem, found := strings.Cut(tag, ",dive,")
	if element && found {
		return elem
	}
	return field
}

// lookupField resolves a struct namespace such as
// "ExperienceData.PracticeAreas[0]" to its struct field.
func lookupField(t reflect.Type, namespace string) (reflect.StructField, bool) {
	var sf reflect.StructField
	parts := strings.Split(namespace, ".")
	if len(parts) < 2 {
		return sf, false
	}
	for _, part := range parts[1:] {
		for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			return sf, false
		}
		f, ok := t.FieldByName(stripIndex(part))
		if !ok {
			return sf, false
		}
		sf, t = f, f.Type
	}
	return sf, true
}

func stripIndex(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
