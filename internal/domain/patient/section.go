package patient

import (
	"encoding/json"
	"strings"

	"github.com/ehr/intake/internal/platform/apperr"
	"github.com/ehr/intake/internal/platform/attachment"
)

// Section names a top-level sub-path of the aggregate. Each section is
// persisted independently, so concurrent writes to different sections of
// the same patient never overwrite each other.
type Section string

const (
	SectionDemographics      Section = "demographics"
	SectionContactInfo       Section = "contact_info"
	SectionInsurance         Section = "insurance"
	SectionAilments          Section = "ailments"
	SectionAllergies         Section = "allergies"
	SectionMedicalHistory    Section = "medical_history"
	SectionMedicationHistory Section = "medication_history"
	SectionVitals            Section = "vitals"
	SectionFamilyHistory     Section = "family_history"
	SectionSocialHistory     Section = "social_history"
)

// Sections lists every section in storage column order.
var Sections = []Section{
	SectionDemographics, SectionContactInfo, SectionInsurance, SectionAilments,
	SectionAllergies, SectionMedicalHistory, SectionMedicationHistory,
	SectionVitals, SectionFamilyHistory, SectionSocialHistory,
}

// ParseSection accepts snake_case or kebab-case section names.
func ParseSection(s string) (Section, error) {
	name := Section(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, sec := range Sections {
		if sec == name {
			return sec, nil
		}
	}
	return "", apperr.NotFound("unknown section %q", s)
}

// ptr returns a pointer to the field that holds section s.
func (p *Patient) ptr(s Section) any {
	switch s {
	case SectionDemographics:
		return &p.Demographics
	case SectionContactInfo:
		return &p.ContactInfo
	case SectionInsurance:
		return &p.Insurance
	case SectionAilments:
		return &p.Ailments
	case SectionAllergies:
		return &p.Allergies
	case SectionMedicalHistory:
		return &p.MedicalHistory
	case SectionMedicationHistory:
		return &p.MedicationHistory
	case SectionVitals:
		return &p.Vitals
	case SectionFamilyHistory:
		return &p.FamilyHistory
	case SectionSocialHistory:
		return &p.SocialHistory
	}
	return nil
}

// copySection copies section s from src into dst. Slices and pointers are
// shared; callers copy from a value they own.
func copySection(dst, src *Patient, s Section) {
	switch s {
	case SectionDemographics:
		dst.Demographics = src.Demographics
	case SectionContactInfo:
		dst.ContactInfo = src.ContactInfo
	case SectionInsurance:
		dst.Insurance = src.Insurance
	case SectionAilments:
		dst.Ailments = src.Ailments
	case SectionAllergies:
		dst.Allergies = src.Allergies
	case SectionMedicalHistory:
		dst.MedicalHistory = src.MedicalHistory
	case SectionMedicationHistory:
		dst.MedicationHistory = src.MedicationHistory
	case SectionVitals:
		dst.Vitals = src.Vitals
	case SectionFamilyHistory:
		dst.FamilyHistory = src.FamilyHistory
	case SectionSocialHistory:
		dst.SocialHistory = src.SocialHistory
	}
}

// encodeSection renders section s as a JSON document.
func (p *Patient) encodeSection(s Section) ([]byte, error) {
	return json.Marshal(p.ptr(s))
}

// decodeSection fills section s from a JSON document. A NULL column
// leaves the zero value.
func (p *Patient) decodeSection(s Section, raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, p.ptr(s))
}

// clone returns a deep copy through JSON, which is how the aggregate is
// persisted anyway.
func (p *Patient) clone() (*Patient, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var out Patient
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	out.ensureLists()
	return &out, nil
}

// ensureLists replaces nil lists with empty ones so they render as [].
func (p *Patient) ensureLists() {
	if p.Ailments == nil {
		p.Ailments = []Ailment{}
	}
	for i := range p.Ailments {
		if p.Ailments[i].TestResults == nil {
			p.Ailments[i].TestResults = []attachment.Reference{}
		}
	}
	if p.Allergies == nil {
		p.Allergies = []Allergy{}
	}
	if p.MedicationHistory == nil {
		p.MedicationHistory = []Medication{}
	}
	mh := &p.MedicalHistory
	if mh.Conditions == nil {
		mh.Conditions = []Condition{}
	}
	if mh.Surgeries == nil {
		mh.Surgeries = []Surgery{}
	}
	if mh.Immunizations == nil {
		mh.Immunizations = []Immunization{}
	}
	if mh.LabReports == nil {
		mh.LabReports = []LabReport{}
	}
	if mh.DiagnosticReports == nil {
		mh.DiagnosticReports = []DiagnosticReport{}
	}
}
