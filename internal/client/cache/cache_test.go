package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestTTL_ExpiresOnRead(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)}
	c := New[string, int](TTL(24*time.Hour), WithClock[string, int](clock.Now))

	c.Set("patterns", 42)

	clock.Advance(23 * time.Hour)
	v, ok := c.Get("patterns")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	clock.Advance(time.Hour)
	_, ok = c.Get("patterns")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestSet_RefreshesInsertionTime(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := New[string, string](TTL(time.Minute), WithClock[string, string](clock.Now))

	c.Set("k", "a")
	clock.Advance(50 * time.Second)
	c.Set("k", "b")
	clock.Advance(50 * time.Second)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestNoExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := New[string, int](nil, WithClock[string, int](clock.Now))

	c.Set("a", 1)
	clock.Advance(1000 * time.Hour)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestDeleteAndClear(t *testing.T) {
	c := New[string, int](NoExpiry{})
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int, int](TTL(time.Hour))
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Set(i%5, i)
			c.Get(i % 5)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, c.Len())
}
