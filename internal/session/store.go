// Package session provides the bounded key-value memory shared by the
// orchestrators. Keys follow "<namespace>:<session>:<field>"; everything
// before the last colon identifies a session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/sandeep066/aceInterview/internal/pkg/config"
)

// Store is session memory. Values are JSON-encoded.
type Store interface {
	// Get decodes the value under key into dst. It reports false when the
	// key is missing or expired.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	// DeletePrefix removes every key starting with prefix and returns the
	// number removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	Stats(ctx context.Context) (Stats, error)
}

// Stats describes the contents of a store.
type Stats struct {
	Sessions int `json:"active_sessions"`
	Entries  int `json:"total_cached_items"`
}

// Key joins a namespace, session and field into a store key.
func Key(namespace, session, field string) string {
	return namespace + ":" + session + ":" + field
}

// Prefix returns the prefix shared by every key of one session.
func Prefix(namespace, session string) string {
	return namespace + ":" + session + ":"
}

func sessionOf(key string) string {
	if i := strings.LastIndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

func countSessions(keys []string) int {
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		seen[sessionOf(k)] = struct{}{}
	}
	return len(seen)
}

// ErrUnknownBackend is returned by New for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown session backend")

// New builds the configured store. The memory store's janitor is not
// started; call Start on it when it is returned.
func New(cfg config.SessionConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(
			WithTTL(cfg.TTL),
			WithMaxEntries(cfg.MaxEntries),
			WithSweepInterval(cfg.SweepInterval),
			WithLogger(logger),
		), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisStore(client, cfg.Redis.KeyPrefix, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
