package familyhistory

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
)

// Service manages the family history section. Hereditary risks are
// recomputed on every write.
type Service struct {
	store  patient.Store
	opts   normalize.Options
	logger zerolog.Logger
}

func NewService(store patient.Store, opts normalize.Options, logger zerolog.Logger) *Service {
	return &Service{store: store, opts: opts, logger: logger}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*patient.FamilyHistory, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.FamilyHistory == nil {
		return &patient.FamilyHistory{FamilyMembers: []patient.FamilyMember{}, HereditaryRisks: []string{}}, nil
	}
	return p.FamilyHistory, nil
}

// mutate runs edit on the member list and stores the derived risks.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, edit func(members []patient.FamilyMember) ([]patient.FamilyMember, error)) (*patient.FamilyHistory, error) {
	p, err := s.store.Apply(ctx, id, patient.SectionFamilyHistory, func(p *patient.Patient) error {
		var current []patient.FamilyMember
		if p.FamilyHistory != nil {
			current = p.FamilyHistory.FamilyMembers
		}
		next, err := edit(current)
		if err != nil {
			return err
		}
		if next == nil {
			next = []patient.FamilyMember{}
		}
		p.FamilyHistory = &patient.FamilyHistory{FamilyMembers: next, HereditaryRisks: HereditaryRisks(next)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.FamilyHistory, nil
}

// Save replaces the member list.
func (s *Service) Save(ctx context.Context, id uuid.UUID, req Request) (*patient.FamilyHistory, error) {
	fh, err := s.mutate(ctx, id, func(current []patient.FamilyMember) ([]patient.FamilyMember, error) {
		next, err := req.Normalize(s.opts)
		if err != nil {
			return nil, err
		}
		return patient.ReplaceAll(current, next), nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("patient_id", id.String()).Int("members", len(fh.FamilyMembers)).Strs("risks", fh.HereditaryRisks).Msg("family history saved")
	return fh, nil
}

func (s *Service) AddMember(ctx context.Context, id uuid.UUID, req MemberRequest) (*patient.FamilyHistory, error) {
	return s.mutate(ctx, id, func(current []patient.FamilyMember) ([]patient.FamilyMember, error) {
		m, err := req.Normalize(s.opts)
		if err != nil {
			return nil, err
		}
		return patient.Append(current, m), nil
	})
}

func (s *Service) UpdateMember(ctx context.Context, id uuid.UUID, ref patient.Ref, req MemberRequest) (*patient.FamilyHistory, error) {
	return s.mutate(ctx, id, func(current []patient.FamilyMember) ([]patient.FamilyMember, error) {
		if _, err := patient.Locate(current, ref); err != nil {
			return nil, err
		}
		m, err := req.Normalize(s.opts)
		if err != nil {
			return nil, err
		}
		return patient.ReplaceAt(current, ref, m)
	})
}

func (s *Service) RemoveMember(ctx context.Context, id uuid.UUID, ref patient.Ref) (*patient.FamilyHistory, error) {
	return s.mutate(ctx, id, func(current []patient.FamilyMember) ([]patient.FamilyMember, error) {
		return patient.RemoveAt(current, ref)
	})
}

// Clear removes the whole section.
func (s *Service) Clear(ctx context.Context, id uuid.UUID) error {
	_, err := s.store.Apply(ctx, id, patient.SectionFamilyHistory, func(p *patient.Patient) error {
		p.FamilyHistory = nil
		return nil
	})
	if err != nil && !apperr.IsNotFound(err) {
		s.logger.Error().Err(err).Str("patient_id", id.String()).Msg("clear family history")
	}
	return err
}
