// Package pypi provides a client for the PyPI package registry JSON API.
package pypi

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/projlint/projlint/pkg/cache"
	"github.com/projlint/projlint/pkg/manifest"
	"github.com/projlint/projlint/pkg/registry"
)

// DefaultBaseURL is the public PyPI JSON API endpoint.
const DefaultBaseURL = "https://pypi.org/pypi"

var (
	depRE    = regexp.MustCompile(`^([a-zA-Z0-9._-]+)`)
	markerRE = regexp.MustCompile(`;\s*(.+)`)
	skipRE   = regexp.MustCompile(`extra|dev|test`)
)

// PackageInfo holds metadata for a Python package from PyPI.
//
// Package names are normalized following PEP 503 (lowercase, runs of
// dots/underscores/hyphens collapsed to a single hyphen). Dependencies
// list only runtime dependencies; extras, dev, and test deps are excluded.
//
// A nil Dependencies slice is valid and indicates no dependencies.
// This struct is safe for concurrent reads after construction.
type PackageInfo struct {
	Name           string   // Package name as published (e.g., "Flask")
	Version        string   // Latest version string (e.g., "2.0.0")
	RequiresPython string   // Python version spec (e.g., ">=3.8", may be empty)
	Dependencies   []string // Direct runtime dependencies, normalized names (nil if none)
	Summary        string   // Short package description (may be empty)
	License        string   // License name or expression (may be empty)
	HomePage       string   // Homepage URL (may be empty)
	Author         string   // Author name (may be empty)
	Yanked         bool     // Whether the latest release is yanked
}

// Client provides access to the PyPI package registry API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*registry.Client
	baseURL string
}

// NewClient creates a PyPI client with the given cache backend.
// Use cache.NewNullCache() to disable caching.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return NewClientWithBaseURL(backend, cacheTTL, DefaultBaseURL)
}

// NewClientWithBaseURL creates a client against a custom registry endpoint,
// for private mirrors or tests.
func NewClientWithBaseURL(backend cache.Cache, cacheTTL time.Duration, baseURL string) *Client {
	return &Client{
		Client:  registry.NewClient(backend, "pypi", cacheTTL, nil),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// FetchPackage retrieves metadata for a Python package from PyPI.
//
// The pkg parameter is normalized automatically per PEP 503.
// If refresh is true, the cache is bypassed and a fresh API call is made.
//
// Returns:
//   - PackageInfo populated with metadata on success
//   - [registry.ErrNotFound] if the package doesn't exist
//   - [registry.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
//   - Other errors for JSON decoding failures
//
// The returned PackageInfo pointer is never nil if err is nil.
// This method is safe for concurrent use.
func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	pkg = manifest.NormalizeName(pkg)

	var info PackageInfo
	err := c.Cached(ctx, pkg, refresh, &info, func() error {
		return c.fetch(ctx, pkg, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, info *PackageInfo) error {
	var data apiResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/%s/json", c.baseURL, pkg), &data); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return fmt.Errorf("%w: pypi package %s", err, pkg)
		}
		return err
	}

	*info = PackageInfo{
		Name:           data.Info.Name,
		Version:        data.Info.Version,
		RequiresPython: data.Info.RequiresPython,
		Dependencies:   extractDeps(data.Info.RequiresDist),
		Summary:        data.Info.Summary,
		License:        extractLicenseType(data.Info.License, data.Info.Classifiers),
		HomePage:       data.Info.HomePage,
		Author:         data.Info.Author,
		Yanked:         data.Info.Yanked,
	}
	return nil
}

// extractDeps pulls normalized runtime dependency names out of
// requires_dist entries, skipping requirements gated behind extras,
// dev, or test environment markers.
func extractDeps(requires []string) []string {
	seen := make(map[string]bool)
	var deps []string
	for _, req := range requires {
		if m := markerRE.FindStringSubmatch(req); len(m) > 1 && skipRE.MatchString(m[1]) {
			continue
		}
		if m := depRE.FindStringSubmatch(req); len(m) > 1 {
			dep := manifest.NormalizeName(m[1])
			if !seen[dep] {
				seen[dep] = true
				deps = append(deps, dep)
			}
		}
	}
	return deps
}

type apiResponse struct {
	Info apiInfo `json:"info"`
}

type apiInfo struct {
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	Summary        string   `json:"summary"`
	License        string   `json:"license"`
	Classifiers    []string `json:"classifiers"`
	RequiresDist   []string `json:"requires_dist"`
	RequiresPython string   `json:"requires_python"`
	HomePage       string   `json:"home_page"`
	Author         string   `json:"author"`
	Yanked         bool     `json:"yanked"`
}

// extractLicenseType extracts a short license identifier from PyPI data.
// It prefers the classifier (e.g., "License :: OSI Approved :: MIT License" -> "MIT License")
// and falls back to the license field if it's short enough.
func extractLicenseType(license string, classifiers []string) string {
	for _, c := range classifiers {
		if strings.HasPrefix(c, "License :: ") {
			parts := strings.Split(c, " :: ")
			if len(parts) >= 3 {
				return parts[len(parts)-1]
			}
		}
	}

	// Short license fields are likely just the type
	if license != "" && len(license) < 100 && !strings.Contains(license, "\n") {
		return strings.TrimSpace(license)
	}

	if license != "" {
		firstLine := strings.TrimSpace(strings.Split(license, "\n")[0])
		if len(firstLine) < 50 {
			return firstLine
		}
	}

	return ""
}
