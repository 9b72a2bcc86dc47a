package ailment

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/attachment"
)

// Service implements the ailment list operations. Assessments share the
// same list and add test-result uploads.
type Service struct {
	list   patient.ListSection[patient.Ailment, *patient.Ailment]
	files  *attachment.Service
	opts   normalize.Options
	logger zerolog.Logger
}

func NewService(store patient.Store, files *attachment.Service, opts normalize.Options, logger zerolog.Logger) *Service {
	return &Service{
		list: patient.ListSection[patient.Ailment, *patient.Ailment]{
			Store:   store,
			Section: patient.SectionAilments,
			Of:      func(p *patient.Patient) *[]patient.Ailment { return &p.Ailments },
		},
		files:  files,
		opts:   opts,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, id uuid.UUID) ([]patient.Ailment, error) {
	return s.list.Get(ctx, id)
}

// Add appends one ailment. Adding the same payload twice yields two rows.
func (s *Service) Add(ctx context.Context, id uuid.UUID, req Request) ([]patient.Ailment, error) {
	out, err := s.list.Add(ctx, id, func() ([]patient.Ailment, error) {
		a, err := req.Normalize(s.opts)
		if err != nil {
			return nil, err
		}
		return []patient.Ailment{a}, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("patient_id", id.String()).Int("count", len(out)).Msg("ailment added")
	return out, nil
}

// Replace swaps the whole list. A replace payload never carries test
// results; they stay only with ailments whose id the payload names.
func (s *Service) Replace(ctx context.Context, id uuid.UUID, reqs []Request) ([]patient.Ailment, error) {
	out, err := s.list.Replace(ctx, id, func(current []patient.Ailment) ([]patient.Ailment, error) {
		next, err := NormalizeAll(reqs, s.opts)
		if err != nil {
			return nil, err
		}
		named := patient.Supplied(current, next)
		next = patient.ReplaceAll(current, next)
		for _, a := range current {
			if !named[a.ID] {
				continue
			}
			for i := range next {
				if next[i].ID == a.ID {
					next[i].TestResults = a.TestResults
				}
			}
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("patient_id", id.String()).Int("count", len(out)).Msg("ailments replaced")
	return out, nil
}

// UpdateAt replaces the ailment at ref, keeping its id and test results.
func (s *Service) UpdateAt(ctx context.Context, id uuid.UUID, ref patient.Ref, req Request) ([]patient.Ailment, error) {
	return s.list.UpdateAt(ctx, id, ref, func(cur patient.Ailment) (patient.Ailment, error) {
		a, err := req.Normalize(s.opts)
		if err != nil {
			return patient.Ailment{}, err
		}
		a.TestResults = cur.TestResults
		return a, nil
	})
}

func (s *Service) RemoveAt(ctx context.Context, id uuid.UUID, ref patient.Ref) ([]patient.Ailment, error) {
	return s.list.RemoveAt(ctx, id, ref)
}

func (s *Service) Clear(ctx context.Context, id uuid.UUID) error {
	_, err := s.list.Clear(ctx, id, nil)
	return err
}

// AttachTestResult stores an uploaded result and appends its reference
// to the ailment at ref.
func (s *Service) AttachTestResult(ctx context.Context, id uuid.UUID, ref patient.Ref, fh *multipart.FileHeader) (*attachment.Reference, error) {
	file, err := s.files.Attach(ctx, attachment.CategoryTestResult, fh, func(file *attachment.Reference) error {
		_, err := s.list.Modify(ctx, id, ref, func(a *patient.Ailment) error {
			a.TestResults = append(a.TestResults, *file)
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("patient_id", id.String()).Str("ailment", ref.String()).Str("location", file.Location).Msg("test result attached")
	return file, nil
}
