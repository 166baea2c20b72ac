package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheExpiresAndInvalidates(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	c := &memoryCache{entries: map[string]memoryEntry{}, now: func() time.Time { return now }}

	_, err := c.Get(ctx, KeyProjectsList)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, KeyProjectsList, []byte(`{"projects":[]}`), time.Minute))
	got, err := c.Get(ctx, KeyProjectsList)
	require.NoError(t, err)
	assert.JSONEq(t, `{"projects":[]}`, string(got))

	now = now.Add(time.Minute)
	_, err = c.Get(ctx, KeyProjectsList)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Invalidate(ctx, "a", "missing"))
	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value, 0))
	value[0] = 'x'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestNewRedisCacheRejectsBadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not a url", nil)
	assert.Error(t, err)
}
