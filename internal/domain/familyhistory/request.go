package familyhistory

import (
	"fmt"
	"strings"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
)

var (
	Relationships = normalize.NewEnum("relationship",
		"Father", "Mother", "Brother", "Sister", "Son", "Daughter",
		"Grandfather", "Grandmother", "Uncle", "Aunt", "Cousin", "Spouse", "Other").CaseInsensitive()

	Genders = normalize.NewEnum("gender", "Male", "Female", "Other").CaseInsensitive().WithSentinel(normalize.SentinelSelect)
)

type MemberRequest struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	DOB               string   `json:"dob"`
	Gender            string   `json:"gender"`
	Relationship      string   `json:"relationship"`
	Deceased          bool     `json:"deceased"`
	MedicalConditions []string `json:"medicalConditions"`
	GeneticConditions []string `json:"geneticConditions"`
}

// Request is the whole family history form.
type Request struct {
	FamilyMembers   []MemberRequest  `json:"familyMembers"`
	HereditaryRisks patient.ReadOnly `json:"hereditaryRisks"`
}

func (r *MemberRequest) normalize(v *apperr.Validator, opts normalize.Options) patient.FamilyMember {
	m := patient.FamilyMember{
		ID:                patient.ElementIDField(v, r.ID),
		Name:              strings.TrimSpace(r.Name),
		Deceased:          r.Deceased,
		MedicalConditions: conditions(r.MedicalConditions),
		GeneticConditions: conditions(r.GeneticConditions),
	}
	v.Required("name", m.Name)
	var err error
	if v.Required("relationship", r.Relationship) {
		m.Relationship, err = Relationships.Canonical(r.Relationship)
		v.Check("relationship", err)
	}
	m.Gender, err = Genders.Optional(r.Gender)
	v.Check("gender", err)
	m.DOB, err = opts.Date(r.DOB)
	v.Check("dob", err)
	return m
}

func (r *MemberRequest) Normalize(opts normalize.Options) (patient.FamilyMember, error) {
	v := apperr.NewValidator()
	m := r.normalize(v, opts)
	return m, v.Err()
}

func (r *Request) Normalize(opts normalize.Options) ([]patient.FamilyMember, error) {
	v := apperr.NewValidator()
	out := make([]patient.FamilyMember, 0, len(r.FamilyMembers))
	for i := range r.FamilyMembers {
		nv := v.Nested(fmt.Sprintf("familyMembers[%d]", i))
		out = append(out, r.FamilyMembers[i].normalize(nv, opts))
		v.Merge(nv)
	}
	return out, v.Err()
}

// conditions trims, drops blanks and removes case-insensitive repeats,
// keeping the first spelling.
func conditions(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
