package patient

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/platform/cache"
)

// CachedStore is a read-through Redis cache in front of another Store.
// Writes store the committed patient; an entry is only ever replaced by
// a higher version. Cache failures are logged and never fail the
// request.
type CachedStore struct {
	next   Store
	cache  *cache.JSON
	logger zerolog.Logger
}

func NewCachedStore(next Store, c *cache.JSON, logger zerolog.Logger) *CachedStore {
	return &CachedStore{next: next, cache: c, logger: logger.With().Str("component", "patient-cache").Logger()}
}

func (s *CachedStore) Create(ctx context.Context, p *Patient) error {
	return s.next.Create(ctx, p)
}

func (s *CachedStore) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var p Patient
	err := s.cache.Get(ctx, id.String(), &p)
	if err == nil {
		p.ensureLists()
		return &p, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn().Err(err).Str("patient_id", id.String()).Msg("cache read failed")
	}

	out, err := s.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// A writer that committed after this load has already stored a newer
	// copy; never overwrite it.
	if _, err := s.cache.SetNX(ctx, id.String(), out); err != nil {
		s.logger.Warn().Err(err).Str("patient_id", id.String()).Msg("cache fill failed")
	}
	return out, nil
}

func (s *CachedStore) List(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error) {
	return s.next.List(ctx, q, limit, offset)
}

// Apply writes the committed patient through to the cache.
func (s *CachedStore) Apply(ctx context.Context, id uuid.UUID, section Section, mutate Mutation) (*Patient, error) {
	out, err := s.next.Apply(ctx, id, section, mutate)
	if err != nil {
		return nil, err
	}
	err = s.cache.SetUnless(ctx, id.String(), out, func(cur []byte) bool {
		var cached struct {
			Version int `json:"version"`
		}
		return json.Unmarshal(cur, &cached) == nil && cached.Version >= out.Version
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("patient_id", id.String()).Msg("cache write failed")
		s.invalidate(ctx, id)
	}
	return out, nil
}

func (s *CachedStore) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Del(ctx, id.String()); err != nil {
		s.logger.Warn().Err(err).Str("patient_id", id.String()).Msg("cache invalidate failed")
	}
}
