package medication

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/platform/apperr"
)

// Service manages the medication history list.
type Service struct {
	list   patient.ListSection[patient.Medication, *patient.Medication]
	logger zerolog.Logger
}

func NewService(store patient.Store, logger zerolog.Logger) *Service {
	return &Service{
		list: patient.ListSection[patient.Medication, *patient.Medication]{
			Store:   store,
			Section: patient.SectionMedicationHistory,
			Of:      func(p *patient.Patient) *[]patient.Medication { return &p.MedicationHistory },
		},
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, id uuid.UUID) ([]patient.Medication, error) {
	return s.list.Get(ctx, id)
}

// Active returns the medications currently taken.
func (s *Service) Active(ctx context.Context, id uuid.UUID) ([]patient.Medication, error) {
	return s.filter(ctx, id, true)
}

// Inactive returns every medication whose status is not Active.
func (s *Service) Inactive(ctx context.Context, id uuid.UUID) ([]patient.Medication, error) {
	return s.filter(ctx, id, false)
}

func (s *Service) filter(ctx context.Context, id uuid.UUID, active bool) ([]patient.Medication, error) {
	all, err := s.list.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]patient.Medication, 0, len(all))
	for _, m := range all {
		if (m.Status == StatusActive) == active {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Service) Add(ctx context.Context, id uuid.UUID, reqs []Request) ([]patient.Medication, error) {
	out, err := s.list.Add(ctx, id, func() ([]patient.Medication, error) {
		if len(reqs) == 0 {
			return nil, apperr.Invalid("medications", apperr.ConstraintRequired, "medications must list at least one medication")
		}
		return NormalizeAll(reqs)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("patient_id", id.String()).Int("added", len(reqs)).Msg("medications added")
	return out, nil
}

func (s *Service) Replace(ctx context.Context, id uuid.UUID, reqs []Request) ([]patient.Medication, error) {
	return s.list.Replace(ctx, id, func([]patient.Medication) ([]patient.Medication, error) {
		return NormalizeAll(reqs)
	})
}

func (s *Service) UpdateAt(ctx context.Context, id uuid.UUID, ref patient.Ref, req Request) ([]patient.Medication, error) {
	return s.list.UpdateAt(ctx, id, ref, func(patient.Medication) (patient.Medication, error) {
		return req.Normalize()
	})
}

func (s *Service) RemoveAt(ctx context.Context, id uuid.UUID, ref patient.Ref) ([]patient.Medication, error) {
	return s.list.RemoveAt(ctx, id, ref)
}

func (s *Service) Clear(ctx context.Context, id uuid.UUID) ([]patient.Medication, error) {
	return s.list.Clear(ctx, id, nil)
}
