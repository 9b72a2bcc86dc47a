package allergy

import (
	"fmt"
	"strings"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
)

var (
	Severities = normalize.NewEnum("allergy severity", "Mild", "Moderate", "Severe", "Life-threatening")
	Statuses   = normalize.NewEnum("allergy status", "Active", "Inactive", "Resolved").WithSentinel(normalize.SentinelSelect)
)

// Request is one allergy row. Category takes a code ("FA") or the
// composite "FA: Food allergy" label.
type Request struct {
	ID        string `json:"id"`
	Allergen  string `json:"allergen"`
	Category  string `json:"category"`
	Reaction  string `json:"reaction"`
	Severity  string `json:"severity"`
	Status    string `json:"status"`
	OnsetDate string `json:"onsetDate"`
	Notes     string `json:"notes"`

	CategoryLabel patient.ReadOnly `json:"categoryLabel"`
	Source        patient.ReadOnly `json:"source"`
}

// CreateRequest is the body of POST /allergies.
type CreateRequest struct {
	patient.Owner
	Allergies []Request `json:"allergies"`
}

// Normalize validates the row and tags it with source.
func (r *Request) Normalize(v *apperr.Validator, opts normalize.Options, source string) patient.Allergy {
	a := patient.Allergy{
		ID:       patient.ElementIDField(v, r.ID),
		Allergen: strings.TrimSpace(r.Allergen),
		Reaction: strings.TrimSpace(r.Reaction),
		Notes:    strings.TrimSpace(r.Notes),
		Source:   source,
	}
	v.Required("allergen", a.Allergen)
	if v.Required("category", r.Category) {
		code, _, ok := normalize.AllergyCategory(r.Category)
		if ok {
			a.Category = code
			a.CategoryLabel, _ = normalize.JoinCode(code)
		} else {
			v.Add("category", apperr.ConstraintEnum, "%q is not a known allergy category (allowed: %s)",
				r.Category, strings.Join(normalize.AllergyCategoryCodes(), ", "))
		}
	}
	var err error
	if v.Required("severity", r.Severity) {
		a.Severity, err = Severities.Canonical(r.Severity)
		v.Check("severity", err)
	}
	a.Status, err = Statuses.Optional(r.Status)
	v.Check("status", err)
	a.OnsetDate, err = opts.Date(r.OnsetDate)
	v.Check("onsetDate", err)
	return a
}

// NormalizeOne validates a single row.
func NormalizeOne(r Request, opts normalize.Options, source string) (patient.Allergy, error) {
	v := apperr.NewValidator()
	a := r.Normalize(v, opts, source)
	return a, v.Err()
}

// NormalizeAll validates a list, naming fields by position.
func NormalizeAll(reqs []Request, opts normalize.Options, source string) ([]patient.Allergy, error) {
	v := apperr.NewValidator()
	out := make([]patient.Allergy, 0, len(reqs))
	for i := range reqs {
		nv := v.Nested(fmt.Sprintf("allergies[%d]", i))
		out = append(out, reqs[i].Normalize(nv, opts, source))
		v.Merge(nv)
	}
	return out, v.Err()
}
