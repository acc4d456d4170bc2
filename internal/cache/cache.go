// Package cache provides an in-memory, TTL-bound memoizing store.
//
// A Store fronts an expensive producer (typically a remote API call) and
// guarantees that, per key, the producer runs at most once per TTL window in
// the absence of concurrent misses. Entries are evicted lazily: a stale entry
// is simply ignored on read and overwritten by the next successful fetch.
// There is no capacity bound - the expected keyspaces (ticker symbols,
// KPI/value triples) are small.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// entry pairs a payload with the wall-clock time it was stored.
// Entries are replaced, never mutated.
type entry[T any] struct {
	payload  T
	storedAt time.Time
}

// Store is a TTL-bound memoizing cache keyed by string.
//
// Concurrent misses for the same key each run their own fetch and the last
// write wins; every caller still receives a valid payload from its own fetch.
// WithSingleFlight collapses concurrent misses into one shared fetch instead.
type Store[T any] struct {
	mu      sync.Mutex
	entries map[string]entry[T]
	now     func() time.Time
	sf      *singleflight.Group
}

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithClock overrides the time source. Used by tests to control entry age.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(s *Store[T]) {
		s.now = now
	}
}

// WithSingleFlight deduplicates concurrent fetches per key: while a fetch for
// a key is in flight, other misses on that key wait for its result instead of
// issuing their own.
func WithSingleFlight[T any]() Option[T] {
	return func(s *Store[T]) {
		s.sf = &singleflight.Group{}
	}
}

// New creates an empty Store.
func New[T any](opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		entries: make(map[string]entry[T]),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrFetch returns the cached payload for key if it is younger than ttl,
// otherwise runs fetch and stores its result under key.
//
// An entry exactly at age ttl counts as stale. A failed fetch leaves the
// store untouched and returns the fetch error unwrapped; the next call
// retries.
func (s *Store[T]) GetOrFetch(key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	if payload, ok := s.lookup(key, ttl); ok {
		return payload, nil
	}

	if s.sf != nil {
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			// A concurrent caller may have stored a fresh entry while we
			// waited for the flight slot.
			if payload, ok := s.lookup(key, ttl); ok {
				return payload, nil
			}
			return s.fetchAndStore(key, fetch)
		})
		if err != nil {
			var zero T
			return zero, err
		}
		return v.(T), nil
	}

	return s.fetchAndStore(key, fetch)
}

// Len returns the number of entries in the store, fresh or stale.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// lookup returns the payload for key if present and strictly younger than ttl.
func (s *Store[T]) lookup(key string, ttl time.Duration) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if s.now().Sub(e.storedAt) >= ttl {
		var zero T
		return zero, false
	}
	return e.payload, true
}

// fetchAndStore runs fetch outside the lock and stores the result on success.
func (s *Store[T]) fetchAndStore(key string, fetch func() (T, error)) (T, error) {
	payload, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}

	s.mu.Lock()
	s.entries[key] = entry[T]{payload: payload, storedAt: s.now()}
	s.mu.Unlock()

	return payload, nil
}
