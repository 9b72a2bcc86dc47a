package allergy

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
)

// Service manages the patient's single allergy list. Each instance
// writes one source; reads and positional edits see the whole list.
type Service struct {
	list   patient.ListSection[patient.Allergy, *patient.Allergy]
	source string
	opts   normalize.Options
	logger zerolog.Logger
}

func NewService(store patient.Store, source string, opts normalize.Options, logger zerolog.Logger) *Service {
	return &Service{
		list: patient.ListSection[patient.Allergy, *patient.Allergy]{
			Store:   store,
			Section: patient.SectionAllergies,
			Of:      func(p *patient.Patient) *[]patient.Allergy { return &p.Allergies },
		},
		source: source,
		opts:   opts,
		logger: logger,
	}
}

func (s *Service) Source() string { return s.source }

func (s *Service) List(ctx context.Context, id uuid.UUID) ([]patient.Allergy, error) {
	return s.list.Get(ctx, id)
}

// Add appends every row of reqs.
func (s *Service) Add(ctx context.Context, id uuid.UUID, reqs []Request) ([]patient.Allergy, error) {
	out, err := s.list.Add(ctx, id, func() ([]patient.Allergy, error) {
		if len(reqs) == 0 {
			return nil, apperr.Invalid("allergies", apperr.ConstraintRequired, "allergies must list at least one allergy")
		}
		return NormalizeAll(reqs, s.opts, s.source)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("patient_id", id.String()).Str("source", s.source).Int("added", len(reqs)).Msg("allergies added")
	return out, nil
}

// Replace swaps the rows of this service's source and keeps the rest in
// place ahead of them.
func (s *Service) Replace(ctx context.Context, id uuid.UUID, reqs []Request) ([]patient.Allergy, error) {
	return s.list.Replace(ctx, id, func(current []patient.Allergy) ([]patient.Allergy, error) {
		incoming, err := NormalizeAll(reqs, s.opts, s.source)
		if err != nil {
			return nil, err
		}
		next := make([]patient.Allergy, 0, len(current)+len(incoming))
		for _, a := range current {
			if a.Source != s.source {
				next = append(next, a)
			}
		}
		return append(next, incoming...), nil
	})
}

// UpdateAt replaces the row at ref. The row keeps the source it was
// recorded under.
func (s *Service) UpdateAt(ctx context.Context, id uuid.UUID, ref patient.Ref, req Request) ([]patient.Allergy, error) {
	return s.list.UpdateAt(ctx, id, ref, func(cur patient.Allergy) (patient.Allergy, error) {
		return NormalizeOne(req, s.opts, cur.Source)
	})
}

func (s *Service) RemoveAt(ctx context.Context, id uuid.UUID, ref patient.Ref) ([]patient.Allergy, error) {
	return s.list.RemoveAt(ctx, id, ref)
}

// Clear removes the rows of this service's source.
func (s *Service) Clear(ctx context.Context, id uuid.UUID) ([]patient.Allergy, error) {
	return s.list.Clear(ctx, id, func(a patient.Allergy) bool { return a.Source != s.source })
}
