package metadata

import "context"

// Keys used by the client for cached reference data and sync bookkeeping.
// The values stay compatible with the web app's local cache.
const (
	KeyLocalities = "localidades"
	KeySections   = "secciones"
	KeyLastSync   = "lastSyncTime"
)

// Repository is a small durable key/value collection for reference lists and
// sync metadata.
type Repository interface {
	// Get returns the stored value, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Clear drops all keys.
	Clear(ctx context.Context) error
}
