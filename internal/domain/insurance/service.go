package insurance

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
	"github.com/ehr/intake/internal/platform/attachment"
)

// Service manages the insurance section and its card image.
type Service struct {
	store  patient.Store
	files  *attachment.Service
	opts   normalize.Options
	logger zerolog.Logger
}

func NewService(store patient.Store, files *attachment.Service, opts normalize.Options, logger zerolog.Logger) *Service {
	return &Service{store: store, files: files, opts: opts, logger: logger}
}

func (s *Service) Save(ctx context.Context, id uuid.UUID, req Request) (*patient.Insurance, error) {
	p, err := s.store.Apply(ctx, id, patient.SectionInsurance, func(p *patient.Patient) error {
		ins, err := req.Normalize(s.opts, p.Insurance)
		if err != nil {
			return err
		}
		p.Insurance = ins
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("patient_id", id.String()).Bool("secondary", p.Insurance.Secondary != nil).Msg("insurance saved")
	return p.Insurance, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*patient.Insurance, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Insurance == nil {
		return nil, apperr.NotFound("no insurance information for patient %s", id)
	}
	return p.Insurance, nil
}

// Delete removes the section and the stored card image with it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	var card *attachment.Reference
	_, err := s.store.Apply(ctx, id, patient.SectionInsurance, func(p *patient.Patient) error {
		if p.Insurance != nil {
			card = p.Insurance.InsuranceCardImage
		}
		p.Insurance = nil
		return nil
	})
	if err != nil {
		return err
	}
	s.files.Discard(ctx, card)
	return nil
}

// UploadCard stores the card image and records it on the insurance
// section. A card may be uploaded before the plans are entered. The
// card it replaces is discarded once the new one is recorded.
func (s *Service) UploadCard(ctx context.Context, id uuid.UUID, fh *multipart.FileHeader) (*attachment.Reference, error) {
	var previous *attachment.Reference
	ref, err := s.files.Attach(ctx, attachment.CategoryInsuranceCard, fh, func(ref *attachment.Reference) error {
		_, err := s.store.Apply(ctx, id, patient.SectionInsurance, func(p *patient.Patient) error {
			if p.Insurance == nil {
				p.Insurance = &patient.Insurance{}
			}
			previous = p.Insurance.InsuranceCardImage
			p.Insurance.InsuranceCardImage = ref
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.files.Discard(ctx, previous)
	s.logger.Info().Str("patient_id", id.String()).Str("location", ref.Location).Bool("replaced", previous != nil).Msg("insurance card uploaded")
	return ref, nil
}
