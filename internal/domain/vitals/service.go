package vitals

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
)

// Service keeps the latest vitals snapshot. Each save overwrites it.
type Service struct {
	store  patient.Store
	opts   normalize.Options
	logger zerolog.Logger
}

func NewService(store patient.Store, opts normalize.Options, logger zerolog.Logger) *Service {
	return &Service{store: store, opts: opts, logger: logger}
}

func (s *Service) Save(ctx context.Context, id uuid.UUID, req Request) (*patient.Vitals, error) {
	p, err := s.store.Apply(ctx, id, patient.SectionVitals, func(p *patient.Patient) error {
		snap, err := req.Normalize(s.opts)
		if err != nil {
			return err
		}
		p.Vitals = snap
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("patient_id", id.String()).Str("date", p.Vitals.Date).Msg("vitals saved")
	return p.Vitals, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*patient.Vitals, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Vitals == nil {
		return nil, apperr.NotFound("no vitals recorded for patient %s", id)
	}
	return p.Vitals, nil
}

func (s *Service) Clear(ctx context.Context, id uuid.UUID) error {
	_, err := s.store.Apply(ctx, id, patient.SectionVitals, func(p *patient.Patient) error {
		p.Vitals = nil
		return nil
	})
	return err
}
