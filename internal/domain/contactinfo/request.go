package contactinfo

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
)

var (
	ContactMethods = normalize.NewEnum("contact method", "Phone", "Email", "SMS", "WhatsApp").CaseInsensitive()

	Relationships = normalize.NewEnum("relationship",
		"Spouse", "Parent", "Child", "Sibling", "Friend", "Guardian", "Relative", "Other")

	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Request is the contact step of the wizard.
type Request struct {
	patient.Owner
	Mobile                  normalize.PhoneInput      `json:"mobile"`
	HomePhone               normalize.PhoneInput      `json:"homePhone"`
	WorkPhone               normalize.PhoneInput      `json:"workPhone"`
	Email                   string                    `json:"email"`
	PreferredContactMethods []string                  `json:"preferredContactMethods"`
	EmergencyContacts       []EmergencyContactRequest `json:"emergencyContact"`
}

type EmergencyContactRequest struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Relationship string               `json:"relationship"`
	Phone        normalize.PhoneInput `json:"phone"`
	Email        string               `json:"email"`
}

// Normalize validates the payload against the section it replaces.
// Emergency contacts keep their ids across saves.
func (r *Request) Normalize(opts normalize.Options, current *patient.ContactInfo) (*patient.ContactInfo, error) {
	v := apperr.NewValidator()
	out := &patient.ContactInfo{
		Email:                   strings.TrimSpace(r.Email),
		PreferredContactMethods: []string{},
	}

	if v.RequiredPresent("mobile", !r.Mobile.IsBlank()) {
		phone, err := r.Mobile.Parse(opts)
		v.Check("mobile", err)
		out.Mobile = phone
	}
	out.HomePhone = optionalPhone(v, "homePhone", r.HomePhone, opts)
	out.WorkPhone = optionalPhone(v, "workPhone", r.WorkPhone, opts)

	if v.Required("email", out.Email) && !emailPattern.MatchString(out.Email) {
		v.Add("email", apperr.ConstraintFormat, "email must look like name@example.com")
	}

	seen := map[string]bool{}
	for i, m := range r.PreferredContactMethods {
		method, err := ContactMethods.Canonical(m)
		if !v.Check(fmt.Sprintf("preferredContactMethods[%d]", i), err) || seen[method] {
			continue
		}
		seen[method] = true
		out.PreferredContactMethods = append(out.PreferredContactMethods, method)
	}

	incoming := make([]patient.EmergencyContact, 0, len(r.EmergencyContacts))
	for i := range r.EmergencyContacts {
		nv := v.Nested(fmt.Sprintf("emergencyContact[%d]", i))
		incoming = append(incoming, r.EmergencyContacts[i].normalize(nv, opts))
		v.Merge(nv)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	var existing []patient.EmergencyContact
	if current != nil {
		existing = current.EmergencyContacts
	}
	out.EmergencyContacts = patient.ReplaceAll(existing, incoming)
	return out, nil
}

func (r *EmergencyContactRequest) normalize(v *apperr.Validator, opts normalize.Options) patient.EmergencyContact {
	ec := patient.EmergencyContact{
		ID:    patient.ElementIDField(v, r.ID),
		Name:  strings.TrimSpace(r.Name),
		Email: strings.TrimSpace(r.Email),
	}
	v.Required("name", ec.Name)
	if v.Required("relationship", r.Relationship) {
		rel, err := Relationships.Canonical(r.Relationship)
		v.Check("relationship", err)
		ec.Relationship = rel
	}
	if v.RequiredPresent("phone", !r.Phone.IsBlank()) {
		phone, err := r.Phone.Parse(opts)
		v.Check("phone", err)
		ec.Phone = phone
	}
	if ec.Email != "" && !emailPattern.MatchString(ec.Email) {
		v.Add("email", apperr.ConstraintFormat, "email must look like name@example.com")
	}
	return ec
}

func optionalPhone(v *apperr.Validator, field string, in normalize.PhoneInput, opts normalize.Options) *normalize.Phone {
	if in.IsBlank() {
		return nil
	}
	phone, err := in.Parse(opts)
	if !v.Check(field, err) {
		return nil
	}
	return &phone
}
