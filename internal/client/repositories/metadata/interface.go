package metadata

import "context"

// Repository is a small key/value collection for client-side state that does
// not belong to any draft: the stable device identifier, the cached snapshot
// generation timestamp, and similar one-off values.
type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
