package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ehr/intake/internal/platform/apperr"
)

// DefaultCountryCode is used when a phone number carries no "+" prefix.
const DefaultCountryCode = "+91"

// ErrInvalidPhone is wrapped by every phone parsing failure.
var ErrInvalidPhone = errors.New("InvalidPhone")

var (
	countryCodePattern = regexp.MustCompile(`^\+\d{1,3}$`)
	leadingCodeGroup   = regexp.MustCompile(`^\+(\d{1,3})[\s\-.()/]`)
	phoneAllowed       = regexp.MustCompile(`^[\d\s\-.()/+]+$`)
)

// Phone is a split phone number.
type Phone struct {
	Code   string `json:"code"`
	Number string `json:"number"`
}

func (p Phone) String() string {
	if p.Number == "" {
		return ""
	}
	return p.Code + p.Number
}

// IsZero reports whether no number is set.
func (p Phone) IsZero() bool { return p.Number == "" }

// ParsePhone strips punctuation from raw, extracts a leading +<1-3 digit>
// country code and checks the remaining local number is 7-10 digits.
// defaultCode applies when raw has no "+" prefix.
func ParsePhone(raw, defaultCode string) (Phone, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Phone{}, invalidPhone(raw, "empty")
	}
	if !phoneAllowed.MatchString(s) {
		return Phone{}, invalidPhone(raw, "contains characters other than digits and punctuation")
	}
	if defaultCode == "" {
		defaultCode = DefaultCountryCode
	}

	if !strings.HasPrefix(s, "+") {
		if strings.Contains(s, "+") {
			return Phone{}, invalidPhone(raw, "'+' is only allowed as the first character")
		}
		local := digitsOnly(s)
		if err := checkLocal(raw, local); err != nil {
			return Phone{}, err
		}
		return Phone{Code: defaultCode, Number: local}, nil
	}

	// A separator right after the code group marks its end explicitly.
	if m := leadingCodeGroup.FindStringSubmatch(s); m != nil {
		local := digitsOnly(s[len(m[0]):])
		if strings.Contains(s[1:], "+") {
			return Phone{}, invalidPhone(raw, "'+' is only allowed as the first character")
		}
		if err := checkLocal(raw, local); err != nil {
			return Phone{}, err
		}
		return Phone{Code: "+" + m[1], Number: local}, nil
	}

	digits := digitsOnly(s[1:])
	if strings.Contains(s[1:], "+") {
		return Phone{}, invalidPhone(raw, "'+' is only allowed as the first character")
	}
	// Shortest code that leaves a valid local number.
	for n := 1; n <= 3 && n < len(digits); n++ {
		local := digits[n:]
		if len(local) >= 7 && len(local) <= 10 {
			return Phone{Code: "+" + digits[:n], Number: local}, nil
		}
	}
	return Phone{}, invalidPhone(raw, "expected a 1-3 digit country code followed by 7-10 digits")
}

// ParsePhoneParts validates an already split {code, number} pair.
func ParsePhoneParts(code, number, defaultCode string) (Phone, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return ParsePhone(number, defaultCode)
	}
	if !strings.HasPrefix(code, "+") {
		code = "+" + code
	}
	if !countryCodePattern.MatchString(code) {
		return Phone{}, invalidPhone(code+number, "country code must be + followed by 1-3 digits")
	}
	if strings.Contains(number, "+") || !phoneAllowed.MatchString(strings.TrimSpace(number)) {
		return Phone{}, invalidPhone(number, "local number must contain digits only")
	}
	local := digitsOnly(number)
	if err := checkLocal(number, local); err != nil {
		return Phone{}, err
	}
	return Phone{Code: code, Number: local}, nil
}

func checkLocal(raw, local string) error {
	if len(local) < 7 || len(local) > 10 {
		return invalidPhone(raw, "local number must be 7-10 digits, got %d", len(local))
	}
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func invalidPhone(raw, format string, args ...any) error {
	return &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: fmt.Sprintf("invalid phone %q: %s", raw, fmt.Sprintf(format, args...)),
		Err:     ErrInvalidPhone,
	}
}
