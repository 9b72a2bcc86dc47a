package patient

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
)

// Service owns patient creation and the demographics section.
type Service struct {
	store  Store
	opts   normalize.Options
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(store Store, opts normalize.Options, logger zerolog.Logger) *Service {
	return &Service{store: store, opts: opts, logger: logger, now: time.Now}
}

// Create registers a patient from the demographics step.
func (s *Service) Create(ctx context.Context, req DemographicsRequest) (*Patient, error) {
	d, err := req.Normalize(s.opts, s.now())
	if err != nil {
		return nil, err
	}
	contact, err := req.contactSeed(s.opts)
	if err != nil {
		return nil, err
	}
	p := &Patient{ID: uuid.New(), Demographics: d, ContactInfo: contact}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Str("patient_id", p.ID.String()).Msg("patient created")
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error) {
	return s.store.List(ctx, q, limit, offset)
}

// UpdateDemographics replaces the demographics section. The payload is
// checked only once the patient is known to exist.
func (s *Service) UpdateDemographics(ctx context.Context, id uuid.UUID, req DemographicsRequest) (*Patient, error) {
	return s.store.Apply(ctx, id, SectionDemographics, func(p *Patient) error {
		if req.Email != "" || req.Mobile != "" {
			v := apperr.NewValidator()
			if req.Email != "" {
				v.Add("email", apperr.ConstraintUnknown, "email is updated through contact information")
			}
			if req.Mobile != "" {
				v.Add("mobile", apperr.ConstraintUnknown, "mobile is updated through contact information")
			}
			return v.Err()
		}
		d, err := req.Normalize(s.opts, s.now())
		if err != nil {
			return err
		}
		p.Demographics = d
		return nil
	})
}

// GetSection returns one section, or a sub-key of it, e.g.
// "medical_history.conditions".
func (s *Service) GetSection(ctx context.Context, id uuid.UUID, path string) (any, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewPresenter(s.opts).Section(p, path)
}

func (s *Service) Completeness(ctx context.Context, id uuid.UUID) (Completeness, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return Completeness{}, err
	}
	return p.Completeness(), nil
}

// ParseID reads a patient id path parameter. An id that cannot name a
// patient is reported as not found.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.NotFound("patient %s not found", raw)
	}
	return id, nil
}
