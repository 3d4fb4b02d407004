// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register
// hooks at startup to receive events about lint runs, dependency
// resolution, and cache operations.
//
// The package uses a simple hooks pattern: hook interfaces per event
// category, no-op default implementations, and registration at startup.
// Hooks are registered by main, not by libraries, which avoids import
// cycles and keeps the core library free of observability frameworks.
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLintHooks(&myLintHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Lint().OnLintStart(ctx, path)
//	// ... run checks ...
//	observability.Lint().OnLintComplete(ctx, path, errs, warnings, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// LintHooks receives events from lint runs.
type LintHooks interface {
	// OnLintStart records the beginning of a lint run.
	OnLintStart(ctx context.Context, manifestPath string)

	// OnLintComplete records a finished lint run with its issue counts.
	OnLintComplete(ctx context.Context, manifestPath string, errs, warnings int, duration time.Duration)
}

// ResolveHooks receives events from dependency resolution.
type ResolveHooks interface {
	// OnResolveStart records the beginning of a graph resolution.
	OnResolveStart(ctx context.Context, root string)

	// OnResolveComplete records a finished resolution.
	OnResolveComplete(ctx context.Context, root string, nodeCount int, duration time.Duration, err error)

	// OnFetchError records a per-package fetch failure that was skipped.
	OnFetchError(ctx context.Context, pkg string, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopLintHooks is a no-op implementation of LintHooks.
type NoopLintHooks struct{}

func (NoopLintHooks) OnLintStart(context.Context, string)                             {}
func (NoopLintHooks) OnLintComplete(context.Context, string, int, int, time.Duration) {}

// NoopResolveHooks is a no-op implementation of ResolveHooks.
type NoopResolveHooks struct{}

func (NoopResolveHooks) OnResolveStart(context.Context, string)                               {}
func (NoopResolveHooks) OnResolveComplete(context.Context, string, int, time.Duration, error) {}
func (NoopResolveHooks) OnFetchError(context.Context, string, error)                          {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

var (
	lintHooks    LintHooks    = NoopLintHooks{}
	resolveHooks ResolveHooks = NoopResolveHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	hooksMu      sync.RWMutex
)

// SetLintHooks registers custom lint hooks.
// This should be called once at application startup before any lint runs.
func SetLintHooks(h LintHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		lintHooks = h
	}
}

// SetResolveHooks registers custom resolution hooks.
// This should be called once at application startup.
func SetResolveHooks(h ResolveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		resolveHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Lint returns the registered lint hooks.
func Lint() LintHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return lintHooks
}

// Resolve returns the registered resolution hooks.
func Resolve() ResolveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return resolveHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults. Intended for tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	lintHooks = NoopLintHooks{}
	resolveHooks = NoopResolveHooks{}
	cacheHooks = NoopCacheHooks{}
}
