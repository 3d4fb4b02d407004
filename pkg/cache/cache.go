// Package cache provides pluggable caching for registry responses,
// resolved dependency graphs, and lint reports.
//
// Three backends are supported:
//   - FileCache: directory-backed cache for CLI usage
//   - RedisCache: shared index tier for server deployments
//   - MongoCache: document store with TTL expiry for large payloads
//
// A NullCache disables caching entirely. Keys are generated through the
// Keyer interface so backends stay agnostic of what is being cached.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Keyer generates cache keys for the different payload kinds.
type Keyer interface {
	// HTTPKey generates a key for a cached registry response.
	HTTPKey(namespace, key string) string

	// GraphKey generates a key for a resolved dependency graph.
	GraphKey(pkg string, opts GraphKeyOpts) string

	// ReportKey generates a key for a lint report, keyed by the
	// manifest content hash.
	ReportKey(manifestHash string, opts ReportKeyOpts) string
}

// GraphKeyOpts captures the resolution options that affect graph identity.
type GraphKeyOpts struct {
	MaxDepth int `json:"max_depth"`
	MaxNodes int `json:"max_nodes"`
}

// ReportKeyOpts captures the lint options that affect report identity.
type ReportKeyOpts struct {
	Strict bool `json:"strict"`
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// GraphKey generates a key for dependency graph caching.
// Options are hashed into the key so different resolution settings
// never collide.
func (k *DefaultKeyer) GraphKey(pkg string, opts GraphKeyOpts) string {
	return hashKey("graph", pkg, opts)
}

// ReportKey generates a key for lint report caching.
func (k *DefaultKeyer) ReportKey(manifestHash string, opts ReportKeyOpts) string {
	return hashKey("report", manifestHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
