package cache

import "time"

// Cache stores decoded API payloads keyed by request.
type Cache interface {
	// Get returns (value, true) if key is present.
	Get(key string) (interface{}, bool)

	// Set stores value under key for ttl. A zero ttl never expires.
	Set(key string, value interface{}, ttl time.Duration) bool

	// Delete removes key.
	Delete(key string)

	// Clear removes every key.
	Clear()

	// Close releases resources.
	Close()
}
