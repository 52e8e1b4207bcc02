package sinks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/AntonStoeckl/library-rental-catalog-go/internal/wire"
)

// ErrNotMirrored is returned by RedisMirror.Load when no snapshot of the kind is stored.
var ErrNotMirrored = errors.New("snapshot not mirrored")

// KeyValueStore is the subset of redis.Cmdable the mirror uses.
type KeyValueStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisMirror keeps the latest full snapshot of each kind in Redis. A generation that is older
// than the stored one never overwrites it.
type RedisMirror struct {
	store  KeyValueStore
	prefix string
	ttl    time.Duration
}

// NewRedisMirror creates a mirror writing keys "<prefix><kind>" that expire after ttl; zero keeps them.
func NewRedisMirror(store KeyValueStore, prefix string, ttl time.Duration) *RedisMirror {
	return &RedisMirror{store: store, prefix: prefix, ttl: ttl}
}

// Name identifies the sink in logs.
func (m *RedisMirror) Name() string {
	return "redis"
}

// Key returns the Redis key of kind.
func (m *RedisMirror) Key(kind string) string {
	return m.prefix + kind
}

// Publish stores payload unless a newer generation is already mirrored.
func (m *RedisMirror) Publish(ctx context.Context, payload Payload) error {
	stored, err := m.Load(ctx, payload.Kind)
	switch {
	case errors.Is(err, ErrNotMirrored):
	case err != nil:
		return err
	case stored.Generation > payload.Generation:
		return nil
	}

	value, err := wire.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s snapshot: %w", payload.Kind, err)
	}

	if err = m.store.Set(ctx, m.Key(payload.Kind), value, m.ttl).Err(); err != nil {
		return fmt.Errorf("storing %s snapshot: %w", payload.Kind, err)
	}

	return nil
}

// Load reads the mirrored snapshot of kind. Items are decoded as generic JSON values.
func (m *RedisMirror) Load(ctx context.Context, kind string) (Payload, error) {
	value, err := m.store.Get(ctx, m.Key(kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Payload{}, ErrNotMirrored
	}

	if err != nil {
		return Payload{}, fmt.Errorf("reading %s snapshot: %w", kind, err)
	}

	var payload Payload
	if err = wire.Unmarshal(value, &payload); err != nil {
		return Payload{}, fmt.Errorf("decoding %s snapshot: %w", kind, err)
	}

	return payload, nil
}
