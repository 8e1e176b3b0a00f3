// Package cache stores legalization results and rendered artifacts.
//
// # Backends
//
//   - [FileCache]: JSON entry files under a directory, used by the CLI
//   - [RedisCache]: a shared Redis instance, used by the server
//   - [NullCache]: stores nothing, used when caching is disabled
//
// # Keys
//
// A [Keyer] derives cache keys from content hashes and the options that
// affect the cached value. [DefaultKeyer] hashes the options with SHA-256;
// [ScopedKeyer] adds a namespace prefix so several users can share one
// backend.
//
//	k := cache.NewDefaultKeyer()
//	key := k.LegalizeKey(cache.Hash(defBytes), cache.LegalizeKeyOpts{CellWidth: 40})
//	if data, hit, err := c.Get(ctx, key); err == nil && hit {
//	    // use data
//	}
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Default lifetimes of cached entries.
const (
	// TTLLegalize applies to legalized DEF output. Legalization is
	// deterministic, so entries only expire to bound disk usage.
	TTLLegalize = 30 * 24 * time.Hour

	// TTLArtifact applies to rendered plots.
	TTLArtifact = 7 * 24 * time.Hour
)

// LegalizeKeyOpts are the inputs besides the DEF content that determine a
// legalization result.
type LegalizeKeyOpts struct {
	CellWidth float64 `json:"cell_width"`
}

// ArtifactKeyOpts are the inputs besides the layout that determine a
// rendered artifact.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	CellWidth float64 `json:"cell_width"`
	Labels    bool    `json:"labels,omitempty"`
	Nets      bool    `json:"nets,omitempty"`
	Moves     bool    `json:"moves,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// LegalizeKey returns the key for the legalization of the DEF content
	// with hash inputHash.
	LegalizeKey(inputHash string, opts LegalizeKeyOpts) string

	// ArtifactKey returns the key for a rendering of the layout with hash
	// layoutHash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer derives keys as "kind:sha256(json(parts))".
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LegalizeKey implements [Keyer].
func (DefaultKeyer) LegalizeKey(inputHash string, opts LegalizeKeyOpts) string {
	return hashKey("legalize", inputHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
