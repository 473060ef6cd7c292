package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sandeep066/aceInterview/internal/pkg/config"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "ace:test:", time.Hour), mr
}

// storeContract runs the behavior every backend must share.
func storeContract(t *testing.T, s Store) {
	ctx := context.Background()

	var got payload
	ok, err := s.Get(ctx, "missing", &got)
	if err != nil || ok {
		t.Fatalf("Get(missing) = %v, %v; want false, nil", ok, err)
	}

	if err := s.Set(ctx, Key("interview", "react_technical_junior", "topic_analysis"), payload{Name: "a", Count: 1}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(ctx, Key("interview", "react_technical_junior", "state"), payload{Name: "b", Count: 2}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(ctx, Key("interview", "go_hr_senior", "state"), payload{Name: "c", Count: 3}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	ok, err = s.Get(ctx, Key("interview", "react_technical_junior", "state"), &got)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v; want true, nil", ok, err)
	}
	if got != (payload{Name: "b", Count: 2}) {
		t.Errorf("Get() value = %+v", got)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Sessions != 2 || stats.Entries != 3 {
		t.Errorf("Stats() = %+v, want 2 sessions, 3 entries", stats)
	}

	n, err := s.DeletePrefix(ctx, Prefix("interview", "react_technical_junior"))
	if err != nil {
		t.Fatalf("DeletePrefix() error = %v", err)
	}
	if n != 2 {
		t.Errorf("DeletePrefix() = %d, want 2", n)
	}

	ok, _ = s.Get(ctx, Key("interview", "react_technical_junior", "topic_analysis"), &got)
	if ok {
		t.Error("Get() after DeletePrefix found a removed key")
	}
	ok, _ = s.Get(ctx, Key("interview", "go_hr_senior", "state"), &got)
	if !ok {
		t.Error("DeletePrefix removed another session's key")
	}
}

func TestMemoryStoreContract(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestRedisStoreContract(t *testing.T) {
	s, _ := newRedisStore(t)
	storeContract(t, s)
}

func TestMemoryStoreTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	s := NewMemoryStore(WithTTL(time.Minute), WithClock(clock.Now))
	ctx := context.Background()

	_ = s.Set(ctx, "a:1:x", payload{Name: "a"})
	_ = s.Set(ctx, "b:1:x", payload{Name: "b"})

	clock.Advance(45 * time.Second)
	var got payload
	if ok, _ := s.Get(ctx, "a:1:x", &got); !ok {
		t.Fatal("Get() before expiry = false")
	}

	// a was touched, b was not.
	clock.Advance(30 * time.Second)
	if ok, _ := s.Get(ctx, "b:1:x", &got); ok {
		t.Error("Get() after expiry = true")
	}
	if ok, _ := s.Get(ctx, "a:1:x", &got); !ok {
		t.Error("Get() of recently used entry = false")
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	s := NewMemoryStore(WithTTL(time.Minute), WithClock(clock.Now))
	ctx := context.Background()

	_ = s.Set(ctx, "old:1:x", 1)
	_ = s.Set(ctx, "old:2:x", 2)
	clock.Advance(50 * time.Second)
	_ = s.Set(ctx, "new:1:x", 3)
	clock.Advance(20 * time.Second)

	if n := s.Sweep(); n != 2 {
		t.Errorf("Sweep() = %d, want 2", n)
	}
	stats, _ := s.Stats(ctx)
	if stats.Entries != 1 {
		t.Errorf("Entries = %d, want 1", stats.Entries)
	}
}

func TestMemoryStoreLRU(t *testing.T) {
	s := NewMemoryStore(WithMaxEntries(2))
	ctx := context.Background()

	_ = s.Set(ctx, "s:1:x", 1)
	_ = s.Set(ctx, "s:2:x", 2)

	var v int
	_, _ = s.Get(ctx, "s:1:x", &v)
	_ = s.Set(ctx, "s:3:x", 3)

	if ok, _ := s.Get(ctx, "s:2:x", &v); ok {
		t.Error("least recently used entry was not evicted")
	}
	if ok, _ := s.Get(ctx, "s:1:x", &v); !ok || v != 1 {
		t.Errorf("Get(s:1:x) = %v, %d; want true, 1", ok, v)
	}
	if ok, _ := s.Get(ctx, "s:3:x", &v); !ok || v != 3 {
		t.Errorf("Get(s:3:x) = %v, %d; want true, 3", ok, v)
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	s := NewMemoryStore(WithMaxEntries(1))
	ctx := context.Background()

	_ = s.Set(ctx, "k", payload{Count: 1})
	_ = s.Set(ctx, "k", payload{Count: 2})

	var got payload
	if ok, _ := s.Get(ctx, "k", &got); !ok || got.Count != 2 {
		t.Errorf("Get() = %v, %+v; want last write", ok, got)
	}
}

func TestMemoryStoreStartStops(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	s := NewMemoryStore(WithTTL(time.Second), WithSweepInterval(time.Millisecond), WithClock(clock.Now))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = s.Set(ctx, "k:1:x", 1)
	clock.Advance(time.Minute)
	s.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.RLock()
		n := len(s.entries)
		s.mu.RUnlock()
		if n == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("janitor did not remove the expired entry")
}

func TestRedisStoreTTL(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "s:1:x", payload{Name: "a"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if ttl := mr.TTL("ace:test:s:1:x"); ttl != time.Hour {
		t.Errorf("TTL = %v, want 1h", ttl)
	}

	mr.FastForward(2 * time.Hour)
	var got payload
	if ok, _ := s.Get(ctx, "s:1:x", &got); ok {
		t.Error("Get() after expiry = true")
	}
}

func TestRedisStoreEscapesPrefix(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()

	_ = s.Set(ctx, "s:a*:x", 1)
	_ = s.Set(ctx, "s:ab:x", 2)

	n, err := s.DeletePrefix(ctx, "s:a*")
	if err != nil {
		t.Fatalf("DeletePrefix() error = %v", err)
	}
	if n != 1 {
		t.Errorf("DeletePrefix() = %d, want 1", n)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		backend string
		wantErr bool
	}{
		{"", false},
		{"memory", false},
		{"redis", false},
		{"etcd", true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			_, err := New(config.SessionConfig{Backend: tt.backend, Redis: config.RedisConfig{Addr: "localhost:0"}}, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
