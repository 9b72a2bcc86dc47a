package medicalhistory

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/domain/allergy"
	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
	"github.com/ehr/intake/internal/platform/attachment"
	"github.com/ehr/intake/internal/platform/respond"
)

// View is the whole medical history as the review screen shows it. The
// allergy list is the patient's single list, whatever its source.
type View struct {
	Conditions        []patient.Condition        `json:"conditions"`
	Surgeries         []patient.Surgery          `json:"surgeries"`
	Allergies         []patient.Allergy          `json:"allergies"`
	Immunizations     []patient.Immunization     `json:"immunizations"`
	LabReports        []patient.LabReport        `json:"lab_reports"`
	DiagnosticReports []patient.DiagnosticReport `json:"diagnostic_reports"`
}

// Service dispatches medical-history operations to the addressed kind.
type Service struct {
	store  patient.Store
	files  *attachment.Service
	kinds  map[string]kind
	opts   normalize.Options
	logger zerolog.Logger
}

func NewService(store patient.Store, allergies *allergy.Service, files *attachment.Service, opts normalize.Options, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		files:  files,
		opts:   opts,
		logger: logger,
		kinds: map[string]kind{
			KindConditions: &listKind[patient.Condition, *patient.Condition, ConditionRequest]{
				name:    "conditions",
				opts:    opts,
				section: historyList(store, func(mh *patient.MedicalHistory) *[]patient.Condition { return &mh.Conditions }),
			},
			KindSurgeries: &listKind[patient.Surgery, *patient.Surgery, SurgeryRequest]{
				name:    "surgeries",
				opts:    opts,
				section: historyList(store, func(mh *patient.MedicalHistory) *[]patient.Surgery { return &mh.Surgeries }),
			},
			KindAllergies: allergyKind{svc: allergies},
			KindImmunizations: &listKind[patient.Immunization, *patient.Immunization, ImmunizationRequest]{
				name:    "immunizations",
				opts:    opts,
				section: historyList(store, func(mh *patient.MedicalHistory) *[]patient.Immunization { return &mh.Immunizations }),
			},
			KindLabReports: &listKind[patient.LabReport, *patient.LabReport, LabReportRequest]{
				name:    "labReports",
				opts:    opts,
				section: historyList(store, func(mh *patient.MedicalHistory) *[]patient.LabReport { return &mh.LabReports }),
				file:    func(lr *patient.LabReport) **attachment.Reference { return &lr.Attachment },
			},
			KindDiagnosticReports: &listKind[patient.DiagnosticReport, *patient.DiagnosticReport, DiagnosticReportRequest]{
				name:    "diagnosticReports",
				opts:    opts,
				section: historyList(store, func(mh *patient.MedicalHistory) *[]patient.DiagnosticReport { return &mh.DiagnosticReports }),
				file:    func(dr *patient.DiagnosticReport) **attachment.Reference { return &dr.Attachment },
			},
		},
	}
}

func historyList[T any, P patient.Element[T]](store patient.Store, pick func(mh *patient.MedicalHistory) *[]T) patient.ListSection[T, P] {
	return patient.ListSection[T, P]{
		Store:   store,
		Section: patient.SectionMedicalHistory,
		Of:      func(p *patient.Patient) *[]T { return pick(&p.MedicalHistory) },
	}
}

// kindOf resolves a path segment; snake_case spellings are accepted.
func (s *Service) kindOf(name string) (kind, error) {
	k, ok := s.kinds[strings.ReplaceAll(strings.ToLower(name), "_", "-")]
	if !ok {
		return nil, apperr.NotFound("unknown medical history list %q", name)
	}
	return k, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	mh := p.MedicalHistory
	return &View{
		Conditions:        mh.Conditions,
		Surgeries:         mh.Surgeries,
		Allergies:         p.Allergies,
		Immunizations:     mh.Immunizations,
		LabReports:        mh.LabReports,
		DiagnosticReports: mh.DiagnosticReports,
	}, nil
}

func (s *Service) List(ctx context.Context, id uuid.UUID, kindName string) (any, error) {
	k, err := s.kindOf(kindName)
	if err != nil {
		return nil, err
	}
	return k.list(ctx, id)
}

// Create appends one record from a body that names its patient.
func (s *Service) Create(ctx context.Context, kindName string, raw []byte) (any, error) {
	k, err := s.kindOf(kindName)
	if err != nil {
		return nil, err
	}
	id, rest, err := splitOwner(raw)
	if err != nil {
		return nil, err
	}
	out, err := k.add(ctx, id, rest)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("patient_id", id.String()).Str("kind", kindName).Msg("medical history record added")
	return out, nil
}

func (s *Service) Replace(ctx context.Context, id uuid.UUID, kindName string, raw []byte) (any, error) {
	k, err := s.kindOf(kindName)
	if err != nil {
		return nil, err
	}
	return k.replace(ctx, id, raw)
}

func (s *Service) UpdateAt(ctx context.Context, id uuid.UUID, kindName string, ref patient.Ref, raw []byte) (any, error) {
	k, err := s.kindOf(kindName)
	if err != nil {
		return nil, err
	}
	return k.updateAt(ctx, id, ref, raw)
}

func (s *Service) RemoveAt(ctx context.Context, id uuid.UUID, kindName string, ref patient.Ref) (any, error) {
	k, err := s.kindOf(kindName)
	if err != nil {
		return nil, err
	}
	return k.removeAt(ctx, id, ref)
}

func (s *Service) Clear(ctx context.Context, id uuid.UUID, kindName string) (any, error) {
	k, err := s.kindOf(kindName)
	if err != nil {
		return nil, err
	}
	return k.clear(ctx, id)
}

// AttachReport stores an uploaded report file on a lab or diagnostic
// report, replacing any earlier reference.
func (s *Service) AttachReport(ctx context.Context, id uuid.UUID, kindName string, ref patient.Ref, fh *multipart.FileHeader) (*attachment.Reference, error) {
	k, err := s.kindOf(kindName)
	if err != nil {
		return nil, err
	}
	if !k.acceptsFiles() {
		return nil, apperr.NotFound("%s take no attachments", kindName)
	}
	file, err := s.files.Attach(ctx, attachment.CategoryMedicalReport, fh, func(file *attachment.Reference) error {
		return k.attach(ctx, id, ref, file)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("patient_id", id.String()).Str("kind", kindName).Str("location", file.Location).Msg("report attached")
	return file, nil
}

// splitOwner pulls the patient id out of a flat create body and returns
// the remaining fields for the kind's own request type.
func splitOwner(raw []byte) (uuid.UUID, []byte, error) {
	var fields map[string]json.RawMessage
	if err := respond.Decode(raw, &fields); err != nil {
		return uuid.Nil, nil, err
	}
	var owner patient.Owner
	for key, dst := range map[string]*string{"patientId": &owner.PatientID, "patient_id": &owner.PatientIDSnake} {
		if v, ok := fields[key]; ok {
			if err := json.Unmarshal(v, dst); err != nil {
				return uuid.Nil, nil, apperr.Invalid(key, apperr.ConstraintFormat, "%s must be a string", key)
			}
			delete(fields, key)
		}
	}
	id, err := owner.OwnerID()
	if err != nil {
		return uuid.Nil, nil, err
	}
	rest, err := json.Marshal(fields)
	if err != nil {
		return uuid.Nil, nil, apperr.Invalid("body", apperr.ConstraintFormat, "invalid body")
	}
	return id, rest, nil
}
