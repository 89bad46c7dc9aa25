package storage

import (
	"context"
	"encoding/json"
)

// Adapter is the asynchronous storage backend consumed by the hub.
// Read returns nil for unset keys rather than an error; errors are
// reserved for backend failures (quota, access, corruption).
// Every call completes exactly once.
type Adapter interface {
	Read(ctx context.Context, key string) (json.RawMessage, error)
	Write(ctx context.Context, key string, value json.RawMessage) error
	Remove(ctx context.Context, key string) error
	KeyAt(ctx context.Context, index int) (string, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}
