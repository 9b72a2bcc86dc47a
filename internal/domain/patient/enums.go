package patient

import (
	"regexp"

	"github.com/ehr/intake/internal/normalize"
)

var (
	Genders = normalize.NewEnum("gender", "Male", "Female", "Other")

	BloodGroups = normalize.NewEnum("blood group",
		"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-", "None").
		WithSentinel(normalize.SentinelUnknown)

	Occupations = normalize.NewEnum("occupation",
		"Student", "Employed", "Self-Employed", "Unemployed", "Retired",
		"Homemaker", "Healthcare Worker", "Other").
		WithSentinel(normalize.SentinelSelect)
)

var (
	aadhaarPattern = regexp.MustCompile(`^\d{12}$`)
	panPattern     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
)

// DefaultCountry is applied to a created address that names none.
const DefaultCountry = "India"
