package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/climate-probability/internal/common"
	"github.com/i474232898/climate-probability/internal/weather"
)

var (
	// ErrNotFound is returned when no location is cached for a query.
	ErrNotFound = errors.New("no cached location for query")
)

type entry struct {
	location weather.Location
	storedAt time.Time
}

// MemoryStore is a concurrency-safe in-memory cache of geocoded locations keyed by
// the normalized query text.
type MemoryStore struct {
	mu sync.RWMutex

	data map[string]entry

	// retention configuration
	maxEntries int           // max number of cached queries
	maxAge     time.Duration // optional max age of an entry

	clock clockwork.Clock
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxEntries or maxAge is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int, maxAge time.Duration) *MemoryStore {
	return NewMemoryStoreWithClock(maxEntries, maxAge, clockwork.NewRealClock())
}

// NewMemoryStoreWithClock is NewMemoryStore with an explicit clock.
func NewMemoryStoreWithClock(maxEntries int, maxAge time.Duration, clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
		clock:      clock,
	}
}

// Save caches loc for query and enforces retention.
func (s *MemoryStore) Save(query string, loc weather.Location) {
	key := common.NormalizeKey(query)
	if key == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.data[key] = entry{location: loc, storedAt: now}
	s.evictExpiredLocked(now)

	// Enforce retention by count, oldest first.
	if s.maxEntries > 0 && len(s.data) > s.maxEntries {
		keys := make([]string, 0, len(s.data))
		for k := range s.data {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			return s.data[keys[i]].storedAt.Before(s.data[keys[j]].storedAt)
		})
		for _, k := range keys[:len(keys)-s.maxEntries] {
			delete(s.data, k)
		}
	}
}

// Get returns the cached location for query. Expired entries are reported as missing.
func (s *MemoryStore) Get(query string) (weather.Location, error) {
	key := common.NormalizeKey(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok || s.expired(e, s.clock.Now()) {
		return weather.Location{}, ErrNotFound
	}
	return e.location, nil
}

// EvictExpired removes entries older than the max age and returns how many were dropped.
func (s *MemoryStore) EvictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictExpiredLocked(s.clock.Now())
}

// Len returns the number of cached entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) expired(e entry, now time.Time) bool {
	return s.maxAge > 0 && now.Sub(e.storedAt) > s.maxAge
}

func (s *MemoryStore) evictExpiredLocked(now time.Time) int {
	if s.maxAge <= 0 {
		return 0
	}
	n := 0
	for k, e := range s.data {
		if s.expired(e, now) {
			delete(s.data, k)
			n++
		}
	}
	return n
}
