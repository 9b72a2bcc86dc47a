package ailment

import (
	"fmt"
	"strings"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
	"github.com/ehr/intake/internal/platform/attachment"
)

var (
	Statuses   = normalize.NewEnum("ailment status", "Active", "Inactive", "Resolved", "Chronic", "Recurrent")
	Severities = normalize.NewEnum("severity", "Mild", "Moderate", "Severe", "Critical")
)

// Request is one ailment row of the wizard's problem list.
type Request struct {
	ID                    string           `json:"id"`
	ProblemName           string           `json:"problemName"`
	ICDCode               string           `json:"icdCode"`
	Description           string           `json:"description"`
	Status                string           `json:"status"`
	Severity              string           `json:"severity"`
	Pain                  *normalize.Pain  `json:"pain"`
	DateOfOnset           string           `json:"dateOfOnset"`
	RiskFactor            string           `json:"riskFactor"`
	Comorbidities         string           `json:"comorbidities"`
	MedicationSideEffects string           `json:"medicationSideEffects"`
	TreatmentPlan         string           `json:"treatmentPlan"`
	TestResults           patient.ReadOnly `json:"testResults"`
}

func (r *Request) normalize(v *apperr.Validator, opts normalize.Options) patient.Ailment {
	a := patient.Ailment{
		ID:                    patient.ElementIDField(v, r.ID),
		Name:                  strings.TrimSpace(r.ProblemName),
		ICDCode:               strings.ToUpper(strings.TrimSpace(r.ICDCode)),
		Description:           strings.TrimSpace(r.Description),
		RiskFactor:            strings.TrimSpace(r.RiskFactor),
		Comorbidities:         strings.TrimSpace(r.Comorbidities),
		MedicationSideEffects: strings.TrimSpace(r.MedicationSideEffects),
		TreatmentPlan:         strings.TrimSpace(r.TreatmentPlan),
		Pain:                  normalize.PainLabel(0),
		TestResults:           []attachment.Reference{},
	}
	v.Required("problemName", a.Name)
	var err error
	if v.Required("status", r.Status) {
		a.Status, err = Statuses.Canonical(r.Status)
		v.Check("status", err)
	}
	if v.Required("severity", r.Severity) {
		a.Severity, err = Severities.Canonical(r.Severity)
		v.Check("severity", err)
	}
	if r.Pain != nil {
		a.Pain = r.Pain.Label()
	}
	a.DateOfOnset, err = opts.Date(r.DateOfOnset)
	v.Check("dateOfOnset", err)
	return a
}

// Normalize validates a single ailment.
func (r *Request) Normalize(opts normalize.Options) (patient.Ailment, error) {
	v := apperr.NewValidator()
	a := r.normalize(v, opts)
	return a, v.Err()
}

// NormalizeAll validates a whole list, naming fields by position.
func NormalizeAll(reqs []Request, opts normalize.Options) ([]patient.Ailment, error) {
	v := apperr.NewValidator()
	out := make([]patient.Ailment, 0, len(reqs))
	for i := range reqs {
		nv := v.Nested(fmt.Sprintf("ailments[%d]", i))
		out = append(out, reqs[i].normalize(nv, opts))
		v.Merge(nv)
	}
	return out, v.Err()
}
