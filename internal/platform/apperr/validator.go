package apperr

import (
	"fmt"
	"strings"
)

// Validator collects field errors so a section handler can report every
// problem in a payload at once.
type Validator struct {
	prefix string
	errs   []FieldError
}

func NewValidator() *Validator { return &Validator{} }

// Nested returns a validator that prefixes field names, e.g. "primary.".
// Merge its errors back into the parent.
func (v *Validator) Nested(prefix string) *Validator {
	return &Validator{prefix: v.prefix + prefix + "."}
}

// Merge appends the errors of a nested validator.
func (v *Validator) Merge(other *Validator) {
	v.errs = append(v.errs, other.errs...)
}

func (v *Validator) name(field string) string { return v.prefix + field }

// Add records an arbitrary field error.
func (v *Validator) Add(field, constraint, format string, args ...any) {
	v.errs = append(v.errs, FieldError{
		Field:      v.name(field),
		Constraint: constraint,
		Message:    fmt.Sprintf(format, args...),
	})
}

// Required fails when value is blank after trimming.
func (v *Validator) Required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		v.Add(field, ConstraintRequired, "%s is required", v.name(field))
		return false
	}
	return true
}

// RequiredPresent fails when a non-string field was not supplied.
func (v *Validator) RequiredPresent(field string, present bool) bool {
	if !present {
		v.Add(field, ConstraintRequired, "%s is required", v.name(field))
		return false
	}
	return true
}

// Check records err against field when it is non-nil. Validation errors
// coming from the normalizer keep their constraint.
func (v *Validator) Check(field string, err error) bool {
	if err == nil {
		return true
	}
	constraint := ConstraintFormat
	msg := err.Error()
	if ae, ok := As(err); ok {
		if len(ae.Fields) > 0 {
			constraint = ae.Fields[0].Constraint
		}
		msg = ae.Message
	}
	v.Add(field, constraint, "%s: %s", v.name(field), msg)
	return false
}

// Range fails when n is outside [min, max].
func (v *Validator) Range(field string, n, min, max float64) bool {
	if n < min || n > max {
		v.Add(field, ConstraintRange, "%s must be between %g and %g", v.name(field), min, max)
		return false
	}
	return true
}

func (v *Validator) HasErrors() bool { return len(v.errs) > 0 }

// Err returns a validation error listing every collected field, or nil.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return Validation(v.errs...)
}
