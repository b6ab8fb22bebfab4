package cache

import "time"

// Keys used by the usecases.
const (
	// KeyCatalogSnapshot holds the *domain.Catalog loaded from the store.
	KeyCatalogSnapshot = "catalog:snapshot"
)

// CacheService defines the behavior for caching mechanisms
type CacheService interface {
	// Get retrieves a value from the cache
	// Returns value, true if found
	// Returns nil, false if not found
	Get(key string) (interface{}, bool)

	// Set adds a value to the cache with a duration
	Set(key string, value interface{}, duration time.Duration)

	// Delete removes a value from the cache
	Delete(key string)

	// Flush removes all items
	Flush()

	// Len reports the number of items, expired ones not yet cleaned up included
	Len() int
}
