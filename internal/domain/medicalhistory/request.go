package medicalhistory

import (
	"strings"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
)

var (
	ConditionStatuses = normalize.NewEnum("condition status", "Active", "Resolved", "Chronic", "In Remission")
	LabStatuses       = normalize.NewEnum("lab status", "Normal", "Abnormal", "Critical", "Pending")
	ReportTypes       = normalize.NewEnum("report type", "X-Ray", "CT", "MRI", "Ultrasound", "ECG", "Other")
)

type ConditionRequest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	DiagnosedDate string `json:"diagnosedDate"`
	Notes         string `json:"notes"`
}

func (r ConditionRequest) normalize(v *apperr.Validator, opts normalize.Options) patient.Condition {
	c := patient.Condition{
		ID:    patient.ElementIDField(v, r.ID),
		Name:  strings.TrimSpace(r.Name),
		Notes: strings.TrimSpace(r.Notes),
	}
	v.Required("name", c.Name)
	var err error
	if v.Required("status", r.Status) {
		c.Status, err = ConditionStatuses.Canonical(r.Status)
		v.Check("status", err)
	}
	c.DiagnosedDate, err = opts.Date(r.DiagnosedDate)
	v.Check("diagnosedDate", err)
	return c
}

type SurgeryRequest struct {
	ID            string `json:"id"`
	Procedure     string `json:"procedure"`
	Date          string `json:"date"`
	Surgeon       string `json:"surgeon"`
	Hospital      string `json:"hospital"`
	Complications string `json:"complications"`
	Notes         string `json:"notes"`
}

func (r SurgeryRequest) normalize(v *apperr.Validator, opts normalize.Options) patient.Surgery {
	s := patient.Surgery{
		ID:            patient.ElementIDField(v, r.ID),
		Procedure:     strings.TrimSpace(r.Procedure),
		Surgeon:       strings.TrimSpace(r.Surgeon),
		Hospital:      strings.TrimSpace(r.Hospital),
		Complications: strings.TrimSpace(r.Complications),
		Notes:         strings.TrimSpace(r.Notes),
	}
	v.Required("procedure", s.Procedure)
	s.Date = requiredDate(v, opts, "date", r.Date)
	return s
}

type ImmunizationRequest struct {
	ID             string `json:"id"`
	Vaccine        string `json:"vaccine"`
	Date           string `json:"date"`
	DoseNumber     int    `json:"doseNumber"`
	AdministeredBy string `json:"administeredBy"`
	NextDueDate    string `json:"nextDueDate"`
}

func (r ImmunizationRequest) normalize(v *apperr.Validator, opts normalize.Options) patient.Immunization {
	im := patient.Immunization{
		ID:             patient.ElementIDField(v, r.ID),
		Vaccine:        strings.TrimSpace(r.Vaccine),
		DoseNumber:     r.DoseNumber,
		AdministeredBy: strings.TrimSpace(r.AdministeredBy),
	}
	v.Required("vaccine", im.Vaccine)
	im.Date = requiredDate(v, opts, "date", r.Date)
	if r.DoseNumber != 0 {
		v.Range("doseNumber", float64(r.DoseNumber), 1, 20)
	}
	var err error
	im.NextDueDate, err = opts.Date(r.NextDueDate)
	if v.Check("nextDueDate", err) && im.NextDueDate != "" && im.Date != "" && im.NextDueDate < im.Date {
		v.Add("nextDueDate", apperr.ConstraintRange, "nextDueDate must not be before date")
	}
	return im
}

type LabReportRequest struct {
	ID             string `json:"id"`
	TestName       string `json:"testName"`
	Date           string `json:"date"`
	Result         string `json:"result"`
	Unit           string `json:"unit"`
	ReferenceRange string `json:"referenceRange"`
	Status         string `json:"status"`

	Attachment patient.ReadOnly `json:"attachment"`
}

func (r LabReportRequest) normalize(v *apperr.Validator, opts normalize.Options) patient.LabReport {
	lr := patient.LabReport{
		ID:             patient.ElementIDField(v, r.ID),
		TestName:       strings.TrimSpace(r.TestName),
		Result:         strings.TrimSpace(r.Result),
		Unit:           strings.TrimSpace(r.Unit),
		ReferenceRange: strings.TrimSpace(r.ReferenceRange),
	}
	v.Required("testName", lr.TestName)
	lr.Date = requiredDate(v, opts, "date", r.Date)
	if v.Required("status", r.Status) {
		var err error
		lr.Status, err = LabStatuses.Canonical(r.Status)
		v.Check("status", err)
	}
	return lr
}

type DiagnosticReportRequest struct {
	ID         string `json:"id"`
	ReportType string `json:"reportType"`
	Date       string `json:"date"`
	BodySite   string `json:"bodySite"`
	Findings   string `json:"findings"`
	Impression string `json:"impression"`

	Attachment patient.ReadOnly `json:"attachment"`
}

func (r DiagnosticReportRequest) normalize(v *apperr.Validator, opts normalize.Options) patient.DiagnosticReport {
	dr := patient.DiagnosticReport{
		ID:         patient.ElementIDField(v, r.ID),
		BodySite:   strings.TrimSpace(r.BodySite),
		Findings:   strings.TrimSpace(r.Findings),
		Impression: strings.TrimSpace(r.Impression),
	}
	if v.Required("reportType", r.ReportType) {
		var err error
		dr.ReportType, err = ReportTypes.Canonical(r.ReportType)
		v.Check("reportType", err)
	}
	dr.Date = requiredDate(v, opts, "date", r.Date)
	return dr
}

func requiredDate(v *apperr.Validator, opts normalize.Options, field, raw string) string {
	if !v.Required(field, raw) {
		return ""
	}
	iso, err := opts.Date(raw)
	v.Check(field, err)
	return iso
}
