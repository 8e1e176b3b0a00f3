package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tenants can
// share one backend without seeing each other's entries.
//
// Example usage:
//
//	// Keys written by the HTTP server
//	apiKeyer := NewScopedKeyer(NewDefaultKeyer(), "api:")
//
//	// Keys written by the CLI
//	cliKeyer := NewDefaultKeyer()
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

// LegalizeKey generates a prefixed key for legalization results.
func (k *ScopedKeyer) LegalizeKey(inputHash string, opts LegalizeKeyOpts) string {
	return k.prefix + k.inner.LegalizeKey(inputHash, opts)
}

// ArtifactKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
