package session

import (
	"container/list"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	DefaultTTL           = 2 * time.Hour
	DefaultMaxEntries    = 10000
	DefaultSweepInterval = 5 * time.Minute
)

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithTTL sets how long an entry lives after its last access.
func WithTTL(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithMaxEntries bounds the number of entries. The least recently used
// entry is evicted first.
func WithMaxEntries(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithSweepInterval sets how often the janitor removes expired entries.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) MemoryOption {
	return func(s *MemoryStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

type memoryEntry struct {
	key      string
	value    []byte
	accessed time.Time
}

// MemoryStore is an in-process Store bounded by age and size.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*list.Element
	order   *list.List // front is most recently used

	ttl           time.Duration
	maxEntries    int
	sweepInterval time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries:       make(map[string]*list.Element),
		order:         list.New(),
		ttl:           DefaultTTL,
		maxEntries:    DefaultMaxEntries,
		sweepInterval: DefaultSweepInterval,
		now:           time.Now,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	s.mu.Lock()
	elem, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return false, nil
	}
	e := elem.Value.(*memoryEntry)
	now := s.now()
	if s.expired(e, now) {
		s.removeElement(elem)
		s.mu.Unlock()
		return false, nil
	}
	e.accessed = now
	s.order.MoveToFront(elem)
	value := e.value
	s.mu.Unlock()

	if err := json.Unmarshal(value, dst); err != nil {
		return false, fmt.Errorf("failed to decode session value %s: %w", key, err)
	}
	return true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode session value %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if elem, ok := s.entries[key]; ok {
		e := elem.Value.(*memoryEntry)
		e.value = data
		e.accessed = now
		s.order.MoveToFront(elem)
		return nil
	}

	s.entries[key] = s.order.PushFront(&memoryEntry{key: key, value: data, accessed: now})
	for len(s.entries) > s.maxEntries {
		oldest := s.order.Back()
		s.logger.Debug("evicting session entry", slog.String("key", oldest.Value.(*memoryEntry).key))
		s.removeElement(oldest)
	}
	return nil
}

func (s *MemoryStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, elem := range s.entries {
		if strings.HasPrefix(key, prefix) {
			s.removeElement(elem)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	keys := make([]string, 0, len(s.entries))
	for key, elem := range s.entries {
		if !s.expired(elem.Value.(*memoryEntry), now) {
			keys = append(keys, key)
		}
	}
	return Stats{Sessions: countSessions(keys), Entries: len(keys)}, nil
}

// Sweep removes every expired entry and returns how many it removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	// Entries are ordered by access time, so expired ones sit at the back.
	for elem := s.order.Back(); elem != nil; {
		if !s.expired(elem.Value.(*memoryEntry), now) {
			break
		}
		prev := elem.Prev()
		s.removeElement(elem)
		removed++
		elem = prev
	}
	return removed
}

// Start runs the janitor until ctx is cancelled.
func (s *MemoryStore) Start(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					s.logger.Debug("swept expired session entries", slog.Int("count", n))
				}
			}
		}
	}()
}

func (s *MemoryStore) expired(e *memoryEntry, now time.Time) bool {
	return now.Sub(e.accessed) > s.ttl
}

func (s *MemoryStore) removeElement(elem *list.Element) {
	s.order.Remove(elem)
	delete(s.entries, elem.Value.(*memoryEntry).key)
}
