package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lease struct {
	ID     string  `json:"id"`
	Rent   float64 `json:"rent"`
	Status string  `json:"status"`
}

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, mr := newRedisCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "rent:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "rent:1", []byte(`{"id":"1"}`), time.Minute))
	got, ok, err := c.Get(ctx, "rent:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"id":"1"}`, string(got))

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "rent:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSpeculativeRestoresSnapshotOnFailure(t *testing.T) {
	c, _ := newRedisCache(t)
	ctx := context.Background()
	sc := NewSpeculative[lease](c, time.Minute)

	original := lease{ID: "r1", Rent: 450000, Status: "active"}
	raw, _ := json.Marshal(original)
	require.NoError(t, c.Set(ctx, "rent:r1", raw, time.Minute))

	var seenDuringCommit lease
	_, err := sc.Apply(ctx, "rent:r1", original,
		func(l lease) (lease, error) {
			l.Rent = 500000
			return l, nil
		},
		func(ctx context.Context, l lease) (lease, error) {
			b, ok, _ := c.Get(ctx, "rent:r1")
			require.True(t, ok)
			require.NoError(t, json.Unmarshal(b, &seenDuringCommit))
			return lease{}, errors.New("permission denied")
		})
	require.Error(t, err)
	assert.Equal(t, float64(500000), seenDuringCommit.Rent)

	b, ok, err := c.Get(ctx, "rent:r1")
	require.NoError(t, err)
	require.True(t, ok)
	var restored lease
	require.NoError(t, json.Unmarshal(b, &restored))
	assert.Equal(t, original, restored)
}

func TestSpeculativeInvalidatesOnSuccess(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	sc := NewSpeculative[lease](c, time.Minute)

	out, err := sc.Apply(ctx, "rent:r2", lease{ID: "r2"},
		func(l lease) (lease, error) {
			l.Status = "terminated"
			return l, nil
		},
		func(_ context.Context, l lease) (lease, error) { return l, nil })
	require.NoError(t, err)
	assert.Equal(t, "terminated", out.Status)

	_, ok, err := c.Get(ctx, "rent:r2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSpeculativeFailureWithoutSnapshotDropsEntry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	sc := NewSpeculative[lease](c, time.Minute)

	_, err := sc.Apply(ctx, "rent:r3", lease{ID: "r3"},
		func(l lease) (lease, error) { return l, nil },
		func(context.Context, lease) (lease, error) { return lease{}, errors.New("boom") })
	require.Error(t, err)

	_, ok, _ := c.Get(ctx, "rent:r3")
	assert.False(t, ok)
}

func TestGetOrLoad(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	loads := 0
	load := func(context.Context) (lease, error) {
		loads++
		return lease{ID: "r4", Rent: 10}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrLoad(ctx, c, "rent:r4", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, "r4", got.ID)
	}
	assert.Equal(t, 1, loads)
}
