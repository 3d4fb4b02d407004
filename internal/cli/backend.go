package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/projlint/projlint/internal/config"
	"github.com/projlint/projlint/pkg/cache"
	"github.com/projlint/projlint/pkg/deps"
	"github.com/projlint/projlint/pkg/registry/pypi"
)

// newCacheBackend builds the cache backend selected by the cache.backend
// setting. Accepted values are "file", "null", a redis:// URL, or a
// mongodb:// URI.
func newCacheBackend(ctx context.Context) (cache.Cache, error) {
	backend := config.Get(config.KeyCacheBackend)
	switch {
	case backend == "" || backend == "file":
		return cache.NewFileCache(config.Get(config.KeyCacheDir))
	case backend == "null":
		return cache.NewNullCache(), nil
	case strings.HasPrefix(backend, "redis://") || strings.HasPrefix(backend, "rediss://"):
		return cache.NewRedisCache(ctx, backend)
	case strings.HasPrefix(backend, "mongodb://") || strings.HasPrefix(backend, "mongodb+srv://"):
		return cache.NewMongoCache(ctx, backend, "projlint", "http_cache")
	}
	return nil, fmt.Errorf("unknown cache backend %q", backend)
}

// newRegistryClient builds a PyPI client over the configured cache backend
// and registry URL.
func newRegistryClient(ctx context.Context) (*pypi.Client, error) {
	backend, err := newCacheBackend(ctx)
	if err != nil {
		return nil, err
	}
	ttl := config.GetDuration(config.KeyCacheTTL, deps.DefaultCacheTTL)
	if url := config.Get(config.KeyRegistryURL); url != "" && url != pypi.DefaultBaseURL {
		return pypi.NewClientWithBaseURL(backend, ttl, url), nil
	}
	return pypi.NewClient(backend, ttl), nil
}
