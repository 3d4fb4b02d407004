package deps

import (
	"context"

	"github.com/projlint/projlint/pkg/cache"
	"github.com/projlint/projlint/pkg/manifest"
	"github.com/projlint/projlint/pkg/registry/pypi"
)

// PyPIFetcher adapts the PyPI client to the Fetcher interface.
type PyPIFetcher struct {
	client *pypi.Client
}

// NewPyPIFetcher creates a fetcher backed by the public PyPI registry.
func NewPyPIFetcher(backend cache.Cache, opts Options) *PyPIFetcher {
	opts = opts.WithDefaults()
	return &PyPIFetcher{client: pypi.NewClient(backend, opts.CacheTTL)}
}

// NewPyPIFetcherWithBaseURL creates a fetcher against a custom registry
// endpoint, for private mirrors or tests.
func NewPyPIFetcherWithBaseURL(backend cache.Cache, opts Options, baseURL string) *PyPIFetcher {
	opts = opts.WithDefaults()
	return &PyPIFetcher{client: pypi.NewClientWithBaseURL(backend, opts.CacheTTL, baseURL)}
}

// Fetch retrieves package metadata from PyPI.
func (f *PyPIFetcher) Fetch(ctx context.Context, name string, refresh bool) (*Package, error) {
	info, err := f.client.FetchPackage(ctx, name, refresh)
	if err != nil {
		return nil, err
	}
	return &Package{
		Name:           manifest.NormalizeName(info.Name),
		Version:        info.Version,
		Dependencies:   info.Dependencies,
		RequiresPython: info.RequiresPython,
		Description:    info.Summary,
		License:        info.License,
		Author:         info.Author,
	}, nil
}

// Ensure PyPIFetcher implements Fetcher.
var _ Fetcher = (*PyPIFetcher)(nil)
