package medication

import (
	"fmt"
	"strings"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
)

const StatusActive = "Active"

var (
	Statuses = normalize.NewEnum("medication status", StatusActive, "Inactive", "Completed", "Discontinued")

	DoseTimes = normalize.NewEnum("dose time",
		"Before Breakfast", "After Breakfast", "Before Lunch", "After Lunch",
		"Before Dinner", "After Dinner", "Bedtime", "As Needed").
		WithSentinel(normalize.SentinelSelect)

	Frequencies = normalize.NewEnum("frequency",
		"Once a day", "Twice a day", "Thrice a day", "Four times a day",
		"Every other day", "Weekly", "As needed")

	Durations = normalize.NewEnum("duration",
		"1 week", "2 weeks", "1 month", "3 months", "6 months", "Ongoing").
		WithSentinel(normalize.SentinelSelect)
)

// Request is one row of the medication history grid.
type Request struct {
	ID        string `json:"id"`
	Problem   string `json:"problem"`
	Medicine  string `json:"medicine"`
	Dosage    string `json:"dosage"`
	DoseTime  string `json:"doseTime"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
	Status    string `json:"status"`
}

// CreateRequest is the body of POST /medication-history.
type CreateRequest struct {
	patient.Owner
	Medications []Request `json:"medications"`
}

func (r *Request) normalize(v *apperr.Validator) patient.Medication {
	m := patient.Medication{
		ID:       patient.ElementIDField(v, r.ID),
		Problem:  strings.TrimSpace(r.Problem),
		Medicine: strings.TrimSpace(r.Medicine),
		Dosage:   strings.TrimSpace(r.Dosage),
	}
	v.Required("medicine", m.Medicine)
	v.Required("dosage", m.Dosage)
	var err error
	m.DoseTime, err = DoseTimes.Optional(r.DoseTime)
	v.Check("doseTime", err)
	if v.Required("frequency", r.Frequency) {
		m.Frequency, err = Frequencies.Canonical(r.Frequency)
		v.Check("frequency", err)
	}
	m.Duration, err = Durations.Optional(r.Duration)
	v.Check("duration", err)
	if v.Required("status", r.Status) {
		m.Status, err = Statuses.Canonical(r.Status)
		v.Check("status", err)
	}
	return m
}

func (r *Request) Normalize() (patient.Medication, error) {
	v := apperr.NewValidator()
	m := r.normalize(v)
	return m, v.Err()
}

func NormalizeAll(reqs []Request) ([]patient.Medication, error) {
	v := apperr.NewValidator()
	out := make([]patient.Medication, 0, len(reqs))
	for i := range reqs {
		nv := v.Nested(fmt.Sprintf("medications[%d]", i))
		out = append(out, reqs[i].normalize(nv))
		v.Merge(nv)
	}
	return out, v.Err()
}
