package registry

import (
	"github.com/marmos91/fsaccess/internal/ratelimiter"
	"github.com/marmos91/fsaccess/pkg/metrics"
	"github.com/marmos91/fsaccess/pkg/provider/backend"
)

// Root is a directory tree served from one metadata store and one content
// store. Several roots may share the same store instances; each one is a
// separate share inside its metadata store.
type Root struct {
	Name          string
	MetadataStore string // Name of the metadata store
	ContentStore  string // Name of the content store
	ReadOnly      bool

	provider *backend.Provider
}

// Provider returns the backend provider serving the root.
func (r *Root) Provider() *backend.Provider {
	return r.provider
}

// RootConfig contains everything needed to add a root.
type RootConfig struct {
	Name          string
	MetadataStore string
	ContentStore  string
	ReadOnly      bool

	// Seed names a fixture tree installed when the root is added.
	// Only "sample" is known.
	Seed string

	// PageSize and ReadSize tune the provider (0 = provider default)
	PageSize int
	ReadSize int

	// Limiter and Metrics are shared by every operation on the root
	Limiter *ratelimiter.Limiter
	Metrics metrics.ProviderMetrics
}
