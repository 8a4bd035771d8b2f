package yaml

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rayforge/registry/internal/domain/entities"
	"github.com/rayforge/registry/internal/external-adapters/lockfile"
)

// IndexRepository implements repositories.IndexRepository backed by the
// registry.yaml file. Writes take a lock file and replace the index via
// an atomic rename, so readers never observe a partially written index.
type IndexRepository struct {
	path string
}

// NewIndexRepository creates a new YAML-based index repository
func NewIndexRepository(path string) *IndexRepository {
	return &IndexRepository{path: path}
}

// lockPath returns the lock file guarding writes to the index.
func (r *IndexRepository) lockPath() string {
	return r.path + ".lock"
}

// Load reads the current registry index. A missing file yields an empty
// index. Readers do not take the write lock.
func (r *IndexRepository) Load(_ context.Context) (*entities.RegistryIndex, error) {
	return r.load()
}

func (r *IndexRepository) load() (*entities.RegistryIndex, error) {
	//nolint:gosec // G304: path is the configured registry index location
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return entities.NewRegistryIndex(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry index %s: %w", r.path, err)
	}

	var index entities.RegistryIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse registry index: %w", err)
	}
	if index.Packages == nil {
		index.Packages = make(map[string]*entities.PackageEntry)
	}

	return &index, nil
}

// Update runs fn against the current index under the write lock and
// persists the result. The lock spans load, fn and the atomic rename, so
// two registry processes submitting at the same time serialize on the
// whole read-modify-write transaction and neither overwrites the other's
// accepted release. fn returning its input unchanged skips the write.
func (r *IndexRepository) Update(ctx context.Context, fn func(*entities.RegistryIndex) (*entities.RegistryIndex, error)) (*entities.RegistryIndex, error) {
	releaseLock, err := lockfile.Acquire(ctx, r.lockPath())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to lock registry index: %v", entities.ErrPersistenceFailure, err)
	}
	defer releaseLock()

	index, err := r.load()
	if err != nil {
		return nil, err
	}

	next, err := fn(index)
	if err != nil {
		return nil, err
	}
	if next == index {
		return next, nil
	}

	if err := r.write(next); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrPersistenceFailure, err)
	}
	return next, nil
}

// Store durably replaces the index. The new content is written to a temp
// file in the same directory, synced, then renamed over the index file.
func (r *IndexRepository) Store(ctx context.Context, index *entities.RegistryIndex) error {
	releaseLock, err := lockfile.Acquire(ctx, r.lockPath())
	if err != nil {
		return fmt.Errorf("failed to lock registry index: %w", err)
	}
	defer releaseLock()

	return r.write(index)
}

// write marshals and atomically replaces the index file. Callers hold
// the write lock.
func (r *IndexRepository) write(index *entities.RegistryIndex) error {
	data, err := marshalIndex(index)
	if err != nil {
		return fmt.Errorf("failed to marshal registry index: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".registry-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp index file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp index file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync temp index file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp index file: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace registry index: %w", err)
	}

	return nil
}

// marshalIndex renders the index with a blank line between package
// entries so the file stays readable for maintainers reviewing diffs.
func marshalIndex(index *entities.RegistryIndex) ([]byte, error) {
	ids := index.PackageIDs()
	if len(ids) == 0 {
		return []byte("packages: {}\n"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("packages:\n")

	for i, id := range ids {
		if i > 0 {
			buf.WriteByte('\n')
		}

		entry, err := marshalEntry(id, index.Packages[id])
		if err != nil {
			return nil, err
		}
		buf.Write(entry)
	}

	return buf.Bytes(), nil
}

// marshalEntry renders one package entry, indented under the packages key.
func marshalEntry(id string, entry *entities.PackageEntry) ([]byte, error) {
	var raw bytes.Buffer
	enc := yaml.NewEncoder(&raw)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]*entities.PackageEntry{id: entry}); err != nil {
		return nil, fmt.Errorf("failed to encode package %s: %w", id, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish encoding package %s: %w", id, err)
	}

	var out bytes.Buffer
	for _, line := range strings.Split(strings.TrimRight(raw.String(), "\n"), "\n") {
		out.WriteString("  ")
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.Bytes(), nil
}
