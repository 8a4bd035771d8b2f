// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/rayforge/registry/internal/domain/entities"
)

// AllowlistRepository provides access to the set of repositories
// permitted to publish into the registry. The allow-list is edited
// out-of-band by maintainers; the service only reads it.
type AllowlistRepository interface {
	// Load reads the current allow-list.
	Load(ctx context.Context) (*entities.Allowlist, error)
}

// IndexRepository provides access to the persisted registry index.
type IndexRepository interface {
	// Load reads the current index. A missing index file yields an
	// empty index, not an error.
	Load(ctx context.Context) (*entities.RegistryIndex, error)

	// Update runs fn against the current index and durably replaces it
	// with fn's result, holding exclusive write access for the whole
	// read-modify-write transaction so independent registry processes
	// serialize on the index, not just goroutines in one process.
	// fn returning its input unchanged skips the write. The write is
	// atomic: readers observe either the previous or the new index,
	// never a partial one. Failures to take the lock or to write are
	// reported wrapped in entities.ErrPersistenceFailure; errors from
	// fn pass through unchanged and leave the index untouched.
	Update(ctx context.Context, fn func(*entities.RegistryIndex) (*entities.RegistryIndex, error)) (*entities.RegistryIndex, error)
}
