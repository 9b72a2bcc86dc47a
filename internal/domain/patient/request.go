package patient

import (
	"strings"
	"time"

	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
)

// DemographicsRequest is the wizard's first step as the client posts it.
type DemographicsRequest struct {
	FirstName  string          `json:"firstName"`
	MiddleName string          `json:"middleName"`
	LastName   string          `json:"lastName"`
	DOB        string          `json:"dob"`
	Gender     string          `json:"gender"`
	BloodGroup string          `json:"bloodGroup"`
	Occupation string          `json:"occupation"`
	Aadhaar    string          `json:"aadhaar"`
	PAN        string          `json:"pan"`
	Address    *AddressRequest `json:"address"`

	// Optional contact seed accepted on creation only.
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

type AddressRequest struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	District   string `json:"district"`
	State      string `json:"state"`
	Country    string `json:"country"`
}

// Normalize validates the request and returns the canonical section.
func (r *DemographicsRequest) Normalize(opts normalize.Options, now time.Time) (Demographics, error) {
	v := apperr.NewValidator()
	v.Required("firstName", r.FirstName)
	v.Required("lastName", r.LastName)
	hasDOB := v.Required("dob", r.DOB)
	hasGender := v.Required("gender", r.Gender)

	d := Demographics{
		Name: Name{
			First:  strings.TrimSpace(r.FirstName),
			Middle: strings.TrimSpace(r.MiddleName),
			Last:   strings.TrimSpace(r.LastName),
		},
	}
	var err error
	if hasDOB {
		d.DateOfBirth, err = opts.Date(r.DOB)
		if v.Check("dob", err) && d.DateOfBirth > now.Format("2006-01-02") {
			v.Add("dob", apperr.ConstraintRange, "dob cannot be in the future")
		}
	}
	if hasGender {
		d.Gender, err = Genders.Canonical(r.Gender)
		v.Check("gender", err)
	}
	d.BloodGroup, err = BloodGroups.Optional(r.BloodGroup)
	v.Check("bloodGroup", err)
	d.Occupation, err = Occupations.Optional(r.Occupation)
	v.Check("occupation", err)

	if a := strings.Join(strings.Fields(r.Aadhaar), ""); a != "" {
		a = strings.ReplaceAll(a, "-", "")
		if !aadhaarPattern.MatchString(a) {
			v.Add("aadhaar", apperr.ConstraintFormat, "aadhaar must be 12 digits")
		}
		d.Aadhaar = a
	}
	if p := strings.ToUpper(strings.TrimSpace(r.PAN)); p != "" {
		if !panPattern.MatchString(p) {
			v.Add("pan", apperr.ConstraintFormat, "pan must be 5 letters, 4 digits and a letter")
		}
		d.PAN = p
	}

	if r.Address != nil {
		d.Address = r.Address.normalize(v.Nested("address"), v)
	}
	return d, v.Err()
}

// normalize returns nil for an address with every field blank.
func (a *AddressRequest) normalize(v, parent *apperr.Validator) *Address {
	out := &Address{
		Street:     strings.TrimSpace(a.Street),
		City:       strings.TrimSpace(a.City),
		PostalCode: strings.TrimSpace(a.PostalCode),
		District:   strings.TrimSpace(a.District),
		State:      strings.TrimSpace(a.State),
		Country:    strings.TrimSpace(a.Country),
	}
	if out.IsEmpty() {
		return nil
	}
	v.Required("city", out.City)
	v.Required("postalCode", out.PostalCode)
	v.Required("district", out.District)
	v.Required("state", out.State)
	if out.Country == "" {
		out.Country = DefaultCountry
	}
	parent.Merge(v)
	return out
}

// contactSeed builds the initial contact section from the optional
// creation fields.
func (r *DemographicsRequest) contactSeed(opts normalize.Options) (*ContactInfo, error) {
	email := strings.TrimSpace(r.Email)
	mobile := strings.TrimSpace(r.Mobile)
	if email == "" && mobile == "" {
		return nil, nil
	}
	v := apperr.NewValidator()
	ci := &ContactInfo{Email: email, PreferredContactMethods: []string{}, EmergencyContacts: []EmergencyContact{}}
	if email != "" && !strings.Contains(email, "@") {
		v.Add("email", apperr.ConstraintFormat, "email must contain @")
	}
	if mobile != "" {
		phone, err := opts.Phone(mobile)
		v.Check("mobile", err)
		ci.Mobile = phone
	}
	return ci, v.Err()
}
