package providers

import "context"

// CacheProvider is the key-value cache boundary. Values are opaque bytes
// with a per-key TTL; the only consistency mechanism between writes and
// subsequent cached reads is explicit deletion.
type CacheProvider interface {
	// Get retrieves a value, or an error if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an expiration in seconds.
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a single key.
	Delete(ctx context.Context, key string) error

	// DeletePattern removes every key matching a glob pattern.
	DeletePattern(ctx context.Context, pattern string) error

	// Exists checks whether a key is present.
	Exists(ctx context.Context, key string) (bool, error)
}
