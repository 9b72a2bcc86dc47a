package patient

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ehr/intake/internal/platform/apperr"
)

// MemoryStore keeps patients in process. It backs STORE=memory and every
// handler test.
type MemoryStore struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]*Patient
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{patients: make(map[uuid.UUID]*Patient), now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.ensureLists()
	now := s.now().UTC()
	p.CreatedAt, p.UpdatedAt, p.Version = now, now, 1
	stored, err := p.clone()
	if err != nil {
		return apperr.Storage(err, "encode patient")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.patients[p.ID]; exists {
		return apperr.Storage(nil, "patient %s already exists", p.ID)
	}
	s.patients[p.ID] = stored
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient %s not found", id)
	}
	out, err := p.clone()
	if err != nil {
		return nil, apperr.Storage(err, "decode patient")
	}
	return out, nil
}

func (s *MemoryStore) List(_ context.Context, q string, limit, offset int) ([]*Patient, int, error) {
	s.mu.RLock()
	var matched []*Patient
	for _, p := range s.patients {
		if matchesName(p, q) {
			matched = append(matched, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})
	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	out := make([]*Patient, 0, end-offset)
	for _, p := range matched[offset:end] {
		c, err := p.clone()
		if err != nil {
			return nil, 0, apperr.Storage(err, "decode patient")
		}
		out = append(out, c)
	}
	return out, total, nil
}

func (s *MemoryStore) Apply(ctx context.Context, id uuid.UUID, section Section, mutate Mutation) (*Patient, error) {
	if section == "" || (&Patient{}).ptr(section) == nil {
		return nil, apperr.NotFound("unknown section %q", section)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient %s not found", id)
	}
	working, err := stored.clone()
	if err != nil {
		return nil, apperr.Storage(err, "decode patient")
	}
	if err := mutate(working); err != nil {
		return nil, err
	}
	// A caller that gave up is not written for.
	if err := ctx.Err(); err != nil {
		return nil, apperr.Storage(err, "save %s", section)
	}
	// Only the addressed section is written back.
	next, err := stored.clone()
	if err != nil {
		return nil, apperr.Storage(err, "decode patient")
	}
	copySection(next, working, section)
	next.Version++
	next.UpdatedAt = s.now().UTC()
	if next, err = next.clone(); err != nil {
		return nil, apperr.Storage(err, "encode patient")
	}
	s.patients[id] = next
	return next.clone()
}

func matchesName(p *Patient, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	full := strings.ToLower(p.Name.First + " " + p.Name.Middle + " " + p.Name.Last)
	return strings.Contains(full, q)
}
