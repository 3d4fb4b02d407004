// Package deps resolves Python dependency graphs, either from a local
// manifest alone or expanded with transitive dependencies fetched from
// a package registry.
package deps

import (
	"time"

	"github.com/projlint/projlint/pkg/graph"
)

const (
	DefaultMaxDepth = 50             // Default maximum dependency depth
	DefaultMaxNodes = 5000           // Default maximum packages to fetch
	DefaultCacheTTL = 24 * time.Hour // Default HTTP cache duration
)

// Options configures dependency resolution behavior.
type Options struct {
	MaxDepth   int                  // Maximum depth to traverse (default: 50)
	MaxNodes   int                  // Maximum packages to fetch (default: 5000)
	CacheTTL   time.Duration        // HTTP cache duration (default: 24h)
	Refresh    bool                 // Bypass cache for fresh data
	IncludeDev bool                 // Include dev dependencies from the manifest
	Extras     []string             // Extras groups to include (empty: none)
	Logger     func(string, ...any) // Progress/error callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Package holds metadata fetched from a package registry.
type Package struct {
	Name           string   // Normalized package name
	Version        string   // Latest or specified version
	Dependencies   []string // Direct dependency names
	RequiresPython string   // Python version spec (may be empty)
	Description    string   // Package summary
	License        string   // License identifier
	Author         string   // Primary author or maintainer
}

// Metadata converts Package fields to node metadata.
func (p *Package) Metadata() graph.Metadata {
	m := graph.Metadata{"version": p.Version}
	if p.Description != "" {
		m["description"] = p.Description
	}
	if p.License != "" {
		m["license"] = p.License
	}
	if p.Author != "" {
		m["author"] = p.Author
	}
	if p.RequiresPython != "" {
		m["requires_python"] = p.RequiresPython
	}
	return m
}
