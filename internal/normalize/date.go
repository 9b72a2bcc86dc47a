// Package normalize converts values between the presentation formats the
// intake wizard sends and the canonical forms stored on the patient
// record. Every function is pure.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ehr/intake/internal/platform/apperr"
)

// DateFormat is one of the three accepted calendar date layouts.
type DateFormat string

const (
	ISO DateFormat = "YYYY-MM-DD"
	MDY DateFormat = "MM-DD-YYYY"
	DMY DateFormat = "DD-MM-YYYY"
)

var layouts = map[DateFormat]string{
	ISO: "2006-01-02",
	MDY: "01-02-2006",
	DMY: "02-01-2006",
}

var (
	isoPattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dayFirstLike = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
)

// ErrInvalidDate is wrapped by every date conversion failure.
var ErrInvalidDate = errors.New("InvalidFormat")

// ParseDateFormat validates a format name such as "DD-MM-YYYY".
func ParseDateFormat(s string) (DateFormat, error) {
	f := DateFormat(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := layouts[f]; !ok {
		return "", fmt.Errorf("unknown date format %q", s)
	}
	return f, nil
}

// ParseDate parses s in exactly the given format.
func ParseDate(s string, from DateFormat) (time.Time, error) {
	layout, ok := layouts[from]
	if !ok {
		return time.Time{}, invalidDate(s, "unknown source format %q", from)
	}
	s = strings.TrimSpace(s)
	if !matchesShape(s, from) {
		return time.Time{}, invalidDate(s, "expected %s", from)
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, invalidDate(s, "not a calendar date")
	}
	return t, nil
}

// FormatDate renders t in the given format.
func FormatDate(t time.Time, to DateFormat) string {
	layout, ok := layouts[to]
	if !ok {
		layout = layouts[ISO]
	}
	return t.Format(layout)
}

// ConvertDate converts s from one explicit format to another.
func ConvertDate(s string, from, to DateFormat) (string, error) {
	t, err := ParseDate(s, from)
	if err != nil {
		return "", err
	}
	if _, ok := layouts[to]; !ok {
		return "", invalidDate(s, "unknown target format %q", to)
	}
	return FormatDate(t, to), nil
}

// DetectDate parses s in any of the three formats. A four-digit leading
// year means ISO. Otherwise the day-first/month-first ambiguity is
// resolved by whichever reading is a valid date, preferring ambiguous
// when both are.
func DetectDate(s string, ambiguous DateFormat) (time.Time, DateFormat, error) {
	s = strings.TrimSpace(s)
	switch {
	case isoPattern.MatchString(s):
		t, err := ParseDate(s, ISO)
		return t, ISO, err
	case dayFirstLike.MatchString(s):
		if ambiguous != MDY && ambiguous != DMY {
			ambiguous = DMY
		}
		other := MDY
		if ambiguous == MDY {
			other = DMY
		}
		if t, err := ParseDate(s, ambiguous); err == nil {
			return t, ambiguous, nil
		}
		t, err := ParseDate(s, other)
		return t, other, err
	default:
		return time.Time{}, "", invalidDate(s, "expected YYYY-MM-DD, MM-DD-YYYY or DD-MM-YYYY")
	}
}

// NormalizeDate converts a date in any accepted format to the target
// format. Empty input stays empty.
func NormalizeDate(s string, to DateFormat, ambiguous DateFormat) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	t, _, err := DetectDate(s, ambiguous)
	if err != nil {
		return "", err
	}
	if _, ok := layouts[to]; !ok {
		return "", invalidDate(s, "unknown target format %q", to)
	}
	return FormatDate(t, to), nil
}

// ToISO is NormalizeDate with the canonical storage format.
func ToISO(s string, ambiguous DateFormat) (string, error) {
	return NormalizeDate(s, ISO, ambiguous)
}

func matchesShape(s string, f DateFormat) bool {
	if f == ISO {
		return isoPattern.MatchString(s)
	}
	return dayFirstLike.MatchString(s)
}

func invalidDate(s, format string, args ...any) error {
	return &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: fmt.Sprintf("invalid date %q: %s", s, fmt.Sprintf(format, args...)),
		Err:     ErrInvalidDate,
	}
}
