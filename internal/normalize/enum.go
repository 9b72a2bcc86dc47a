package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ehr/intake/internal/platform/apperr"
)

// Sentinel labels used by optional select boxes.
const (
	SentinelSelect  = "Select"
	SentinelUnknown = "Unknown"
)

// ErrEnumValue is wrapped by every enum rejection.
var ErrEnumValue = errors.New("value not in declared set")

// Enum is a declared value set. Matching is exact unless the enum was
// built with CaseInsensitive.
type Enum struct {
	Name     string
	Values   []string
	Sentinel string
	fold     bool
}

// NewEnum declares a case-sensitive enum.
func NewEnum(name string, values ...string) Enum {
	return Enum{Name: name, Values: values}
}

// WithSentinel returns a copy that also accepts sentinel as the "not
// chosen" value of an optional select.
func (e Enum) WithSentinel(sentinel string) Enum {
	e.Sentinel = sentinel
	return e
}

// CaseInsensitive returns a copy that folds case when matching and
// canonicalises to the declared spelling.
func (e Enum) CaseInsensitive() Enum {
	e.fold = true
	return e
}

// Canonical returns the declared spelling of v, or an error when v is
// not a member. The sentinel is a member.
func (e Enum) Canonical(v string) (string, error) {
	if e.Sentinel != "" && e.match(e.Sentinel, v) {
		return e.Sentinel, nil
	}
	for _, allowed := range e.Values {
		if e.match(allowed, v) {
			return allowed, nil
		}
	}
	return "", &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: fmt.Sprintf("%q is not a valid %s (allowed: %s)", v, e.Name, strings.Join(e.Values, ", ")),
		Fields:  []apperr.FieldError{{Constraint: apperr.ConstraintEnum}},
		Err:     ErrEnumValue,
	}
}

// Validate is Canonical without the value.
func (e Enum) Validate(v string) error {
	_, err := e.Canonical(v)
	return err
}

// Contains reports membership without the sentinel.
func (e Enum) Contains(v string) bool {
	for _, allowed := range e.Values {
		if e.match(allowed, v) {
			return true
		}
	}
	return false
}

// IsSentinel reports whether v is the "not chosen" placeholder. Sentinel
// values are never clinical data.
func (e Enum) IsSentinel(v string) bool {
	return e.Sentinel != "" && e.match(e.Sentinel, v)
}

// Optional canonicalises an optional field: blank input becomes the
// sentinel.
func (e Enum) Optional(v string) (string, error) {
	if strings.TrimSpace(v) == "" {
		return e.Sentinel, nil
	}
	return e.Canonical(v)
}

func (e Enum) match(allowed, v string) bool {
	if e.fold {
		return strings.EqualFold(allowed, strings.TrimSpace(v))
	}
	return allowed == v
}
