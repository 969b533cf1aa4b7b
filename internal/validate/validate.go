// Package validate checks decoded JSON request bodies against an input
// schema before they reach the services: which keys may appear, which must
// appear, and what shape each value has.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phrazzld/blog-api/internal/domain"
)

// Messages attached to field errors.
const (
	MsgRequired       = "This field is required."
	MsgNotAllowed     = "This field is not allowed."
	MsgExpectedString = "Expected a string."
	MsgExpectedList   = "Tags must be a list, set, or tuple."
)

// Data is a decoded JSON object.
type Data = map[string]any

// MissingFieldsError lists required keys that were absent or null.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// FieldErrors reports one error per missing field.
func (e *MissingFieldsError) FieldErrors() domain.FieldErrors {
	return fieldErrors(e.Fields, MsgRequired)
}

func (e *MissingFieldsError) Unwrap() error {
	return domain.ErrBadRequest
}

// InvalidFieldsError lists keys outside the allow-list.
type InvalidFieldsError struct {
	Fields []string
}

func (e *InvalidFieldsError) Error() string {
	return "fields not allowed: " + strings.Join(e.Fields, ", ")
}

// FieldErrors reports one error per rejected field.
func (e *InvalidFieldsError) FieldErrors() domain.FieldErrors {
	return fieldErrors(e.Fields, MsgNotAllowed)
}

func (e *InvalidFieldsError) Unwrap() error {
	return domain.ErrBadRequest
}

func fieldErrors(fields []string, msg string) domain.FieldErrors {
	out := make(domain.FieldErrors, 0, len(fields))
	for _, f := range fields {
		out.Add(f, msg)
	}
	return out
}

// RequiredFields returns a *MissingFieldsError naming every key of required
// that data lacks or holds as null, in the order given. Empty strings count
// as present.
func RequiredFields(data Data, required ...string) error {
	var missing []string
	for _, key := range required {
		if v, ok := data[key]; !ok || v == nil {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

// AllowedFields returns an *InvalidFieldsError naming every key of data not
// in allowed, sorted.
func AllowedFields(data Data, allowed ...string) error {
	permitted := make(map[string]struct{}, len(allowed))
	for _, key := range allowed {
		permitted[key] = struct{}{}
	}

	var invalid []string
	for key := range data {
		if _, ok := permitted[key]; !ok {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return &InvalidFieldsError{Fields: invalid}
	}
	return nil
}

// Kind is the JSON shape a field must have.
type Kind int

const (
	KindString Kind = iota + 1
	KindStringList
)

// Schema describes the accepted input of one operation.
type Schema struct {
	Allowed  []string
	Required []string
	Types    map[string]Kind
}

// Check runs the allow-list, then the required check, then the shape check,
// and returns the first failure.
func (s Schema) Check(data Data) error {
	if err := AllowedFields(data, s.Allowed...); err != nil {
		return err
	}
	if err := RequiredFields(data, s.Required...); err != nil {
		return err
	}
	return s.checkTypes(data)
}

func (s Schema) checkTypes(data Data) error {
	fields := make([]string, 0, len(s.Types))
	for f := range s.Types {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var errs domain.FieldErrors
	for _, f := range fields {
		v, ok := data[f]
		if !ok || v == nil {
			continue
		}
		switch s.Types[f] {
		case KindString:
			if _, ok := v.(string); !ok {
				errs.Add(f, MsgExpectedString)
			}
		case KindStringList:
			if !isStringList(v) {
				errs.Add(domain.NonFieldErrors, MsgExpectedList)
			}
		default:
			panic(fmt.Sprintf("validate: unknown kind %d for field %q", s.Types[f], f))
		}
	}
	return errs.Err()
}

func isStringList(v any) bool {
	items, ok := v.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return false
		}
	}
	return true
}

// Has reports whether key is present and not null.
func Has(data Data, key string) bool {
	v, ok := data[key]
	return ok && v != nil
}

// String returns data[key] when it is a string.
func String(data Data, key string) (string, bool) {
	s, ok := data[key].(string)
	return s, ok
}

// StringList returns data[key] when it is a list of strings.
func StringList(data Data, key string) ([]string, bool) {
	items, ok := data[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
