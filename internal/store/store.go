// Package store is the persistence collaborator: a named key-value store
// holding JSON-encoded values.
package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// KV is the raw persistence contract. Implementations live under
// internal/store/<driver>/.
type KV interface {
	// Get returns the stored bytes for key and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put creates or replaces the value for key.
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Load decodes the value stored under key into a T, returning def when the
// key has never been saved. Decoding failures (e.g. a corrupted timestamp)
// are returned to the caller.
func Load[T any](ctx context.Context, kv KV, key string, def T) (T, error) {
	data, ok, err := kv.Get(ctx, key)
	if err != nil {
		return def, fmt.Errorf("load %q: %w", key, err)
	}
	if !ok {
		return def, nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return def, fmt.Errorf("decode %q: %w", key, err)
	}
	return v, nil
}

// Save encodes v as JSON and stores it under key.
func Save(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}
