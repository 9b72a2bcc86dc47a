package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupJSON(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *JSON) {
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return mr, NewJSON(c, "test:", ttl)
}

func TestJSON_SetGetDel(t *testing.T) {
	mr, j := setupJSON(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, j.Set(ctx, "a", entry{Name: "asthma", Count: 2}))
	assert.True(t, mr.Exists("test:a"))

	var got entry
	require.NoError(t, j.Get(ctx, "a", &got))
	assert.Equal(t, entry{Name: "asthma", Count: 2}, got)

	require.NoError(t, j.Del(ctx, "a"))
	assert.ErrorIs(t, j.Get(ctx, "a", &got), ErrMiss)
}

func TestJSON_Expires(t *testing.T) {
	mr, j := setupJSON(t, time.Second)
	ctx := context.Background()

	require.NoError(t, j.Set(ctx, "a", entry{Name: "x"}))
	mr.FastForward(2 * time.Second)

	var got entry
	assert.ErrorIs(t, j.Get(ctx, "a", &got), ErrMiss)
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer c.Close()

	_, err = NewClient(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestJSON_SetNX(t *testing.T) {
	_, j := setupJSON(t, time.Minute)
	ctx := context.Background()

	ok, err := j.SetNX(ctx, "a", entry{Name: "first"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = j.SetNX(ctx, "a", entry{Name: "second"})
	require.NoError(t, err)
	assert.False(t, ok)

	var got entry
	require.NoError(t, j.Get(ctx, "a", &got))
	assert.Equal(t, "first", got.Name)
}

func TestJSON_SetUnless(t *testing.T) {
	_, j := setupJSON(t, time.Minute)
	ctx := context.Background()
	newer := func(n int) func([]byte) bool {
		return func(cur []byte) bool {
			var e entry
			return json.Unmarshal(cur, &e) == nil && e.Count >= n
		}
	}

	require.NoError(t, j.SetUnless(ctx, "a", entry{Name: "v2", Count: 2}, newer(2)))
	require.NoError(t, j.SetUnless(ctx, "a", entry{Name: "v1", Count: 1}, newer(1)))

	var got entry
	require.NoError(t, j.Get(ctx, "a", &got))
	assert.Equal(t, "v2", got.Name)

	require.NoError(t, j.SetUnless(ctx, "a", entry{Name: "v3", Count: 3}, newer(3)))
	require.NoError(t, j.Get(ctx, "a", &got))
	assert.Equal(t, "v3", got.Name)
}
