package services

import (
	"fmt"
	"sort"

	"golang.org/x/mod/semver"

	"github.com/rayforge/registry/internal/domain/entities"
)

// IndexBuilderService merges validated releases into the registry index.
// It never mutates its input: a new index is produced, or the original is
// returned untouched when the release is already present.
type IndexBuilderService struct{}

// NewIndexBuilderService creates a new index builder service
func NewIndexBuilderService() *IndexBuilderService {
	return &IndexBuilderService{}
}

// ApplyRelease inserts the submitted release into the index in ascending
// version order and refreshes the package's static metadata.
//
// Reapplying an already-present identical release is a no-op: the input
// index is returned unchanged. A resubmission of an existing version with
// different assets fails with ErrChecksumConflict.
func (s *IndexBuilderService) ApplyRelease(index *entities.RegistryIndex, sub *entities.Submission) (*entities.RegistryIndex, error) {
	id := sub.PackageID()
	record := releaseRecord(sub)

	if entry, ok := index.Package(id); ok {
		if existing, found := entry.FindVersion(sub.Tag); found {
			if existing.Equal(record) {
				// Idempotent replay of an accepted release.
				return index, nil
			}
			return nil, fmt.Errorf("%w: %s@%s", entities.ErrChecksumConflict, id, sub.Tag)
		}
	}

	next := index.Clone()

	entry, ok := next.Package(id)
	if !ok {
		entry = &entities.PackageEntry{
			Repository: sub.RepositoryURL(),
			PURL:       sub.PURL(),
		}
		next.Packages[id] = entry
	}

	// Static metadata always follows the newest accepted manifest.
	entry.Name = sub.Manifest.Name
	entry.Description = sub.Manifest.Description
	entry.Author = sub.Manifest.Author

	entry.Versions = append(entry.Versions, record)
	sort.SliceStable(entry.Versions, func(i, j int) bool {
		return semver.Compare(entry.Versions[i].Version, entry.Versions[j].Version) < 0
	})
	entry.LatestStable = latestStable(entry.Versions)

	return next, nil
}

func releaseRecord(sub *entities.Submission) entities.ReleaseRecord {
	assets := make([]entities.ReleaseAsset, 0, len(sub.Manifest.Provides.Assets))
	for _, a := range sub.Manifest.Provides.Assets {
		assets = append(assets, entities.ReleaseAsset{URL: a.URL, SHA256: a.SHA256})
	}
	return entities.ReleaseRecord{Version: sub.Tag, Assets: assets}
}

// latestStable returns the highest version without a prerelease suffix,
// falling back to the highest version overall when every release is a
// prerelease.
func latestStable(versions []entities.ReleaseRecord) string {
	for i := len(versions) - 1; i >= 0; i-- {
		if semver.Prerelease(versions[i].Version) == "" {
			return versions[i].Version
		}
	}
	if len(versions) == 0 {
		return ""
	}
	return versions[len(versions)-1].Version
}
