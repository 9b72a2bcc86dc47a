package patient

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehr/intake/internal/platform/apperr"
	"github.com/ehr/intake/internal/platform/cache"
)

func setupCachedStore(t *testing.T) (*miniredis.Miniredis, *MemoryStore, *CachedStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mem := NewMemoryStore()
	cs := NewCachedStore(mem, cache.NewJSON(client, "intake:patient:", time.Minute), zerolog.New(io.Discard))
	return mr, mem, cs
}

func TestCachedStore_ReadThrough(t *testing.T) {
	mr, _, cs := setupCachedStore(t)
	ctx := context.Background()
	p := seedPatient(t, cs, "Ana", "Diaz")

	assert.False(t, mr.Exists("intake:patient:"+p.ID.String()))

	got, err := cs.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name.First)
	assert.True(t, mr.Exists("intake:patient:"+p.ID.String()))

	cached, err := cs.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, got.ID, cached.ID)
	assert.NotNil(t, cached.Ailments)
}

func TestCachedStore_ApplyWritesThrough(t *testing.T) {
	mr, _, cs := setupCachedStore(t)
	ctx := context.Background()
	p := seedPatient(t, cs, "Ana", "Diaz")

	_, err := cs.Get(ctx, p.ID)
	require.NoError(t, err)

	_, err = cs.Apply(ctx, p.ID, SectionVitals, func(p *Patient) error {
		p.Vitals = &Vitals{Date: "2024-01-01", Time: "10:00"}
		return nil
	})
	require.NoError(t, err)
	assert.True(t, mr.Exists("intake:patient:"+p.ID.String()))

	got, err := cs.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Vitals)
	assert.Equal(t, "2024-01-01", got.Vitals.Date)
}

// pausingStore holds a Get between its load and its return.
type pausingStore struct {
	Store
	loaded  chan struct{}
	release chan struct{}
}

func (s *pausingStore) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.Store.Get(ctx, id)
	close(s.loaded)
	<-s.release
	return p, err
}

func TestCachedStore_LateFillDoesNotHideWrite(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	mem := NewMemoryStore()
	p := seedPatient(t, mem, "Ana", "Diaz")
	slow := &pausingStore{Store: mem, loaded: make(chan struct{}), release: make(chan struct{})}
	jc := cache.NewJSON(client, "intake:patient:", time.Minute)
	reader := NewCachedStore(slow, jc, zerolog.New(io.Discard))
	writer := NewCachedStore(mem, jc, zerolog.New(io.Discard))

	done := make(chan error, 1)
	go func() {
		_, err := reader.Get(ctx, p.ID)
		done <- err
	}()
	<-slow.loaded

	_, err := writer.Apply(ctx, p.ID, SectionAilments, func(p *Patient) error {
		p.Ailments = Append(p.Ailments, Ailment{Name: "Asthma", Status: "Active", Severity: "Mild"})
		return nil
	})
	require.NoError(t, err)
	close(slow.release)
	require.NoError(t, <-done)

	got, err := writer.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Ailments, 1)
}

func TestCachedStore_OlderWriteDoesNotReplaceNewer(t *testing.T) {
	_, mem, cs := setupCachedStore(t)
	ctx := context.Background()
	p := seedPatient(t, cs, "Ana", "Diaz")

	older, err := mem.Apply(ctx, p.ID, SectionVitals, func(p *Patient) error {
		p.Vitals = &Vitals{Date: "2024-01-01", Time: "09:00"}
		return nil
	})
	require.NoError(t, err)
	_, err = cs.Apply(ctx, p.ID, SectionVitals, func(p *Patient) error {
		p.Vitals = &Vitals{Date: "2024-01-02", Time: "10:00"}
		return nil
	})
	require.NoError(t, err)

	// A slow writer stores its earlier result last.
	late := NewCachedStore(staticApply{Store: mem, out: older}, cs.cache, zerolog.New(io.Discard))
	_, err = late.Apply(ctx, p.ID, SectionVitals, nil)
	require.NoError(t, err)

	got, err := cs.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Vitals)
	assert.Equal(t, "2024-01-02", got.Vitals.Date)
}

// staticApply returns a fixed result from Apply.
type staticApply struct {
	Store
	out *Patient
}

func (s staticApply) Apply(context.Context, uuid.UUID, Section, Mutation) (*Patient, error) {
	return s.out, nil
}

func TestCachedStore_RedisDownFallsThrough(t *testing.T) {
	mr, _, cs := setupCachedStore(t)
	ctx := context.Background()
	p := seedPatient(t, cs, "Ana", "Diaz")

	mr.Close()

	got, err := cs.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Diaz", got.Name.Last)

	_, err = cs.Apply(ctx, p.ID, SectionVitals, func(p *Patient) error { return nil })
	assert.NoError(t, err)
}

func TestCachedStore_NotFoundIsNotCached(t *testing.T) {
	mr, _, cs := setupCachedStore(t)
	_, err := cs.Get(context.Background(), [16]byte{1})
	assert.True(t, apperr.IsNotFound(err))
	assert.Empty(t, mr.Keys())
}
