package cache

// ScopedKeyer wraps a Keyer with a prefix so separate server tenants or
// registry indexes get isolated cache namespaces.
//
// Example usage:
//
//	// Keys scoped to a private registry index
//	privKeyer := NewScopedKeyer(NewDefaultKeyer(), "index:internal:")
//
//	// Global keys for the public registry
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// GraphKey generates a prefixed key for dependency graph caching.
func (k *ScopedKeyer) GraphKey(pkg string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(pkg, opts)
}

// ReportKey generates a prefixed key for lint report caching.
func (k *ScopedKeyer) ReportKey(manifestHash string, opts ReportKeyOpts) string {
	return k.prefix + k.inner.ReportKey(manifestHash, opts)
}

// Ensure ScopedKeyer implements Keyer.
var _ Keyer = (*ScopedKeyer)(nil)
