package normalize

import (
	"sort"
	"strings"
)

// allergyCategories is the fixed code table behind "CODE: Description"
// allergy category strings.
var allergyCategories = map[string]string{
	"DA":  "Drug allergy",
	"FA":  "Food allergy",
	"EA":  "Environmental allergy",
	"IA":  "Insect allergy",
	"LA":  "Latex allergy",
	"AA":  "Animal allergy",
	"MA":  "Mold allergy",
	"PA":  "Pollen allergy",
	"CA":  "Contact allergy",
	"OTH": "Other allergy",
}

// SplitCode splits a composite "CODE: Description" string on the first
// colon. Input without a colon is treated as a bare code.
func SplitCode(s string) (code, description string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

// AllergyCategory resolves a code (or a composite string) against the
// code table. ok is false for unknown codes.
func AllergyCategory(s string) (code, description string, ok bool) {
	code, _ = SplitCode(s)
	code = strings.ToUpper(code)
	description, ok = allergyCategories[code]
	return code, description, ok
}

// JoinCode reconstructs "CODE: Description" from the code table.
func JoinCode(code string) (string, bool) {
	code, desc, ok := AllergyCategory(code)
	if !ok {
		return "", false
	}
	return code + ": " + desc, true
}

// AllergyCategoryCodes lists the known codes, sorted.
func AllergyCategoryCodes() []string {
	codes := make([]string, 0, len(allergyCategories))
	for c := range allergyCategories {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
