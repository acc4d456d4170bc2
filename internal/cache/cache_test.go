package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually-advanced time source for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestGetOrFetch_SecondCallWithinTTLHitsCache(t *testing.T) {
	clock := newFakeClock()
	store := New[string](WithClock[string](clock.Now))

	calls := 0
	fetch := func() (string, error) {
		calls++
		return "payload", nil
	}

	first, err := store.GetOrFetch("AAPL", 5*time.Minute, fetch)
	require.NoError(t, err)

	clock.Advance(10 * time.Second)

	second, err := store.GetOrFetch("AAPL", 5*time.Minute, fetch)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestGetOrFetch_ExpiredEntryRefetches(t *testing.T) {
	clock := newFakeClock()
	store := New[string](WithClock[string](clock.Now))

	calls := 0
	fetch := func() (string, error) {
		calls++
		if calls == 1 {
			return "old", nil
		}
		return "new", nil
	}

	_, err := store.GetOrFetch("AAPL", 5*time.Minute, fetch)
	require.NoError(t, err)

	clock.Advance(5*time.Minute + time.Second)

	got, err := store.GetOrFetch("AAPL", 5*time.Minute, fetch)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, "new", got)

	// The refreshed entry must be stamped with the new time: a third call
	// shortly after must hit the cache.
	clock.Advance(time.Second)
	got, err = store.GetOrFetch("AAPL", 5*time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "new", got)
}

func TestGetOrFetch_EntryExactlyAtTTLIsStale(t *testing.T) {
	clock := newFakeClock()
	store := New[string](WithClock[string](clock.Now))

	calls := 0
	fetch := func() (string, error) {
		calls++
		return "payload", nil
	}

	_, err := store.GetOrFetch("AAPL", 5*time.Minute, fetch)
	require.NoError(t, err)

	// Freshness uses strict less-than: age == ttl means refresh.
	clock.Advance(5 * time.Minute)

	_, err = store.GetOrFetch("AAPL", 5*time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGetOrFetch_DistinctKeysDoNotShareSlots(t *testing.T) {
	clock := newFakeClock()
	store := New[string](WithClock[string](clock.Now))

	aaplCalls := 0
	_, err := store.GetOrFetch("AAPL", time.Hour, func() (string, error) {
		aaplCalls++
		return "apple", nil
	})
	require.NoError(t, err)

	tslaCalls := 0
	got, err := store.GetOrFetch("TSLA", time.Hour, func() (string, error) {
		tslaCalls++
		return "tesla", nil
	})
	require.NoError(t, err)

	assert.Equal(t, "tesla", got)
	assert.Equal(t, 1, aaplCalls)
	assert.Equal(t, 1, tslaCalls)
	assert.Equal(t, 2, store.Len())

	// Populating TSLA must not have disturbed AAPL.
	got, err = store.GetOrFetch("AAPL", time.Hour, func() (string, error) {
		aaplCalls++
		return "apple-again", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "apple", got)
	assert.Equal(t, 1, aaplCalls)
}

func TestGetOrFetch_FailedFetchLeavesStoreUntouched(t *testing.T) {
	clock := newFakeClock()
	store := New[string](WithClock[string](clock.Now))

	fetchErr := errors.New("provider unavailable")

	_, err := store.GetOrFetch("AAPL", time.Hour, func() (string, error) {
		return "", fetchErr
	})

	// The error propagates unwrapped and nothing was written.
	assert.Same(t, fetchErr, err)
	assert.Equal(t, 0, store.Len())

	// The next call retries the fetch.
	got, err := store.GetOrFetch("AAPL", time.Hour, func() (string, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, 1, store.Len())
}

func TestGetOrFetch_FailedRefreshDoesNotClobberStaleEntry(t *testing.T) {
	clock := newFakeClock()
	store := New[string](WithClock[string](clock.Now))

	_, err := store.GetOrFetch("AAPL", time.Minute, func() (string, error) {
		return "old", nil
	})
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)

	_, err = store.GetOrFetch("AAPL", time.Minute, func() (string, error) {
		return "", errors.New("provider unavailable")
	})
	require.Error(t, err)

	// The stale entry is still in place, so a successful refresh can
	// overwrite it rather than starting from an empty slot.
	assert.Equal(t, 1, store.Len())
}

func TestGetOrFetch_HitNeverSurfacesProviderErrors(t *testing.T) {
	clock := newFakeClock()
	store := New[string](WithClock[string](clock.Now))

	_, err := store.GetOrFetch("AAPL", time.Hour, func() (string, error) {
		return "cached", nil
	})
	require.NoError(t, err)

	got, err := store.GetOrFetch("AAPL", time.Hour, func() (string, error) {
		return "", errors.New("provider down")
	})
	require.NoError(t, err)
	assert.Equal(t, "cached", got)
}

func TestGetOrFetch_ConcurrentMissesEachFetchByDefault(t *testing.T) {
	store := New[int]()

	var mu sync.Mutex
	calls := 0
	release := make(chan struct{})

	fetch := func() (int, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		<-release
		return n, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := store.GetOrFetch("AAPL", time.Hour, fetch)
			assert.NoError(t, err)
			assert.Greater(t, v, 0)
		}()
	}

	// Give all goroutines time to miss before releasing the fetches.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	// Without single-flight every concurrent miss runs its own fetch; the
	// store simply keeps whichever write landed last.
	assert.Equal(t, 4, calls)
	assert.Equal(t, 1, store.Len())
}

func TestGetOrFetch_SingleFlightCollapsesConcurrentMisses(t *testing.T) {
	store := New[string](WithSingleFlight[string]())

	var mu sync.Mutex
	calls := 0
	started := make(chan struct{})
	release := make(chan struct{})

	fetch := func() (string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		close(started)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := store.GetOrFetch("AAPL", time.Hour, fetch)
		assert.NoError(t, err)
		assert.Equal(t, "shared", v)
	}()

	// Wait until the first fetch is in flight, then pile on more callers.
	<-started
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := store.GetOrFetch("AAPL", time.Hour, func() (string, error) {
				t.Error("joined caller must not run its own fetch")
				return "", nil
			})
			assert.NoError(t, err)
			assert.Equal(t, "shared", v)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, calls)
}
