package cache

import (
	"context"
	"time"
)

// Store is an injected key-value store whose entries expire on their own.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX writes only when key is absent and reports whether it wrote.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// Noop never holds anything; used when no cache backend is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (Noop) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (Noop) SetNX(context.Context, string, []byte, time.Duration) (bool, error) {
	return false, nil
}

func (Noop) Delete(context.Context, ...string) error {
	return nil
}
