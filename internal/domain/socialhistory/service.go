package socialhistory

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
)

// Service saves and clears social history sub-sections one at a time.
type Service struct {
	store  patient.Store
	opts   normalize.Options
	logger zerolog.Logger
}

func NewService(store patient.Store, opts normalize.Options, logger zerolog.Logger) *Service {
	return &Service{store: store, opts: opts, logger: logger}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (patient.SocialHistory, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return patient.SocialHistory{}, err
	}
	return p.SocialHistory, nil
}

// Save validates raw as the body of sub and stores it, leaving the other
// sub-sections untouched. It returns the stored sub-section.
func (s *Service) Save(ctx context.Context, id uuid.UUID, sub Sub, raw []byte) (any, error) {
	entry, ok := subsections[sub]
	if !ok {
		_, err := ParseSub(string(sub))
		return nil, err
	}
	var saved any
	_, err := s.store.Apply(ctx, id, patient.SectionSocialHistory, func(p *patient.Patient) error {
		out, err := entry.save(&p.SocialHistory, raw, s.opts)
		saved = out
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("patient_id", id.String()).Str("sub", string(sub)).Msg("social history saved")
	return saved, nil
}

// Clear sets sub back to null.
func (s *Service) Clear(ctx context.Context, id uuid.UUID, sub Sub) (patient.SocialHistory, error) {
	entry, ok := subsections[sub]
	if !ok {
		_, err := ParseSub(string(sub))
		return patient.SocialHistory{}, err
	}
	p, err := s.store.Apply(ctx, id, patient.SectionSocialHistory, func(p *patient.Patient) error {
		entry.clear(&p.SocialHistory)
		return nil
	})
	if err != nil {
		return patient.SocialHistory{}, err
	}
	return p.SocialHistory, nil
}
