package insurance

import (
	"strings"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
)

var PlanTypes = normalize.NewEnum("plan type",
	"HMO", "PPO", "EPO", "POS", "HDHP", "Medicare", "Medicaid", "Other").CaseInsensitive()

type Request struct {
	patient.Owner
	Primary                PlanRequest          `json:"primary"`
	Secondary              *PlanRequest         `json:"secondary"`
	InsuranceContactNumber normalize.PhoneInput `json:"insuranceContactNumber"`
	InsuranceCardImage     patient.ReadOnly     `json:"insuranceCardImage"`
}

type PlanRequest struct {
	Company        string `json:"company"`
	PolicyNumber   string `json:"policyNumber"`
	GroupNumber    string `json:"groupNumber"`
	PlanType       string `json:"planType"`
	EffectiveStart string `json:"effectiveStart"`
	EffectiveEnd   string `json:"effectiveEnd"`
}

// Normalize validates the payload. The stored card image, if any, is
// carried over from current.
func (r *Request) Normalize(opts normalize.Options, current *patient.Insurance) (*patient.Insurance, error) {
	v := apperr.NewValidator()
	out := &patient.Insurance{}

	pv := v.Nested("primary")
	out.Primary = r.Primary.normalize(pv, opts)
	v.Merge(pv)
	if r.Secondary != nil && !r.Secondary.isBlank() {
		sv := v.Nested("secondary")
		plan := r.Secondary.normalize(sv, opts)
		v.Merge(sv)
		out.Secondary = &plan
	}
	if v.RequiredPresent("insuranceContactNumber", !r.InsuranceContactNumber.IsBlank()) {
		phone, err := r.InsuranceContactNumber.Parse(opts)
		v.Check("insuranceContactNumber", err)
		out.InsuranceContactNumber = phone
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if current != nil {
		out.InsuranceCardImage = current.InsuranceCardImage
	}
	return out, nil
}

func (p *PlanRequest) isBlank() bool {
	return strings.TrimSpace(p.Company+p.PolicyNumber+p.GroupNumber+p.PlanType+p.EffectiveStart+p.EffectiveEnd) == ""
}

func (p *PlanRequest) normalize(v *apperr.Validator, opts normalize.Options) patient.InsurancePlan {
	plan := patient.InsurancePlan{
		Company:      strings.TrimSpace(p.Company),
		PolicyNumber: strings.TrimSpace(p.PolicyNumber),
		GroupNumber:  strings.TrimSpace(p.GroupNumber),
	}
	v.Required("company", plan.Company)
	v.Required("policyNumber", plan.PolicyNumber)
	v.Required("groupNumber", plan.GroupNumber)
	var err error
	if v.Required("planType", p.PlanType) {
		plan.PlanType, err = PlanTypes.Canonical(p.PlanType)
		v.Check("planType", err)
	}
	okStart, okEnd := false, false
	if v.Required("effectiveStart", p.EffectiveStart) {
		plan.EffectiveStart, err = opts.Date(p.EffectiveStart)
		okStart = v.Check("effectiveStart", err)
	}
	if v.Required("effectiveEnd", p.EffectiveEnd) {
		plan.EffectiveEnd, err = opts.Date(p.EffectiveEnd)
		okEnd = v.Check("effectiveEnd", err)
	}
	if okStart && okEnd && plan.EffectiveEnd < plan.EffectiveStart {
		v.Add("effectiveEnd", apperr.ConstraintRange, "effectiveEnd must not be before effectiveStart")
	}
	return plan
}
