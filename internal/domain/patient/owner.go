package patient

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ehr/intake/internal/platform/apperr"
)

// Owner is embedded in create payloads that name their patient in the
// body rather than in the path. Both key spellings are accepted.
type Owner struct {
	PatientID      string `json:"patientId"`
	PatientIDSnake string `json:"patient_id"`
}

// OwnerID returns the patient the payload belongs to. A blank id is a
// validation error; a malformed one cannot name a patient.
func (o Owner) OwnerID() (uuid.UUID, error) {
	raw := strings.TrimSpace(o.PatientID)
	if raw == "" {
		raw = strings.TrimSpace(o.PatientIDSnake)
	}
	if raw == "" {
		return uuid.Nil, apperr.Invalid("patientId", apperr.ConstraintRequired, "patientId is required")
	}
	return ParseID(raw)
}

// ElementIDField reads the optional client-supplied id of a list element.
func ElementIDField(v *apperr.Validator, raw string) uuid.UUID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		v.Add("id", apperr.ConstraintFormat, "id must be a uuid")
		return uuid.Nil
	}
	return id
}
