package contactinfo

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
)

// Service manages the contact section of a patient.
type Service struct {
	store  patient.Store
	opts   normalize.Options
	logger zerolog.Logger
}

func NewService(store patient.Store, opts normalize.Options, logger zerolog.Logger) *Service {
	return &Service{store: store, opts: opts, logger: logger}
}

// Save replaces the contact section.
func (s *Service) Save(ctx context.Context, id uuid.UUID, req Request) (*patient.ContactInfo, error) {
	p, err := s.store.Apply(ctx, id, patient.SectionContactInfo, func(p *patient.Patient) error {
		ci, err := req.Normalize(s.opts, p.ContactInfo)
		if err != nil {
			return err
		}
		p.ContactInfo = ci
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("patient_id", id.String()).Int("emergency_contacts", len(p.ContactInfo.EmergencyContacts)).Msg("contact information saved")
	return p.ContactInfo, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*patient.ContactInfo, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.ContactInfo == nil {
		return nil, apperr.NotFound("no contact information for patient %s", id)
	}
	return p.ContactInfo, nil
}

// Delete clears the section. Clearing an empty section succeeds.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.store.Apply(ctx, id, patient.SectionContactInfo, func(p *patient.Patient) error {
		p.ContactInfo = nil
		return nil
	})
	return err
}
