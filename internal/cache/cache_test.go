// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(0)
	ctx := context.Background()

	c.Set(ctx, "list:alice", []byte("page"), time.Minute)

	data, ok := c.Get(ctx, "list:alice")
	require.True(t, ok)
	assert.Equal(t, []byte("page"), data)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache(0)

	_, ok := c.Get(context.Background(), "absent")

	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(0)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok, "expired entries read as misses")
}

func TestMemoryCacheClear(t *testing.T) {
	c := NewMemoryCache(0)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"), time.Minute)
	c.Set(ctx, "b", []byte("2"), time.Minute)
	c.Clear(ctx)

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "b")
	assert.False(t, ok)
}

func TestNoOpCacheNeverStores(t *testing.T) {
	c := NewNoOpCache()
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}
