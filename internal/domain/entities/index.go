package entities

import "sort"

// ReleaseAsset is one downloadable artifact recorded for a release.
type ReleaseAsset struct {
	URL    string `yaml:"url"`
	SHA256 string `yaml:"sha256"`
}

// ReleaseRecord is a single accepted version of a package. Records are
// immutable once written to the index.
type ReleaseRecord struct {
	Version string         `yaml:"version"`
	Assets  []ReleaseAsset `yaml:"assets,omitempty"`
}

// Equal reports whether two records describe the same release: same
// version and the same assets in the same order.
func (r ReleaseRecord) Equal(other ReleaseRecord) bool {
	if r.Version != other.Version || len(r.Assets) != len(other.Assets) {
		return false
	}
	for i := range r.Assets {
		if r.Assets[i] != other.Assets[i] {
			return false
		}
	}
	return true
}

// PackageEntry is the consolidated registry entry for one package.
// Versions are kept unique and sorted in ascending semver order, so the
// last element is always the newest release.
type PackageEntry struct {
	Name         string          `yaml:"name"`
	Description  string          `yaml:"description"`
	Author       string          `yaml:"author"`
	Repository   string          `yaml:"repository"`
	PURL         string          `yaml:"purl,omitempty"`
	LatestStable string          `yaml:"latest_stable"`
	Versions     []ReleaseRecord `yaml:"versions"`
}

// HighestVersion returns the newest recorded version, or "" when the
// entry has no versions yet.
func (e *PackageEntry) HighestVersion() string {
	if len(e.Versions) == 0 {
		return ""
	}
	return e.Versions[len(e.Versions)-1].Version
}

// FindVersion returns the record for a version, if present.
func (e *PackageEntry) FindVersion(version string) (ReleaseRecord, bool) {
	for _, rec := range e.Versions {
		if rec.Version == version {
			return rec, true
		}
	}
	return ReleaseRecord{}, false
}

// Clone returns a deep copy of the entry.
func (e *PackageEntry) Clone() *PackageEntry {
	out := *e
	out.Versions = make([]ReleaseRecord, len(e.Versions))
	for i, rec := range e.Versions {
		out.Versions[i] = rec
		out.Versions[i].Assets = append([]ReleaseAsset(nil), rec.Assets...)
	}
	return &out
}

// RegistryIndex is the single source of truth: a mapping from package id
// to its consolidated entry. It is mutated only by successful validated
// submissions.
type RegistryIndex struct {
	Packages map[string]*PackageEntry `yaml:"packages"`
}

// NewRegistryIndex returns an empty index.
func NewRegistryIndex() *RegistryIndex {
	return &RegistryIndex{Packages: make(map[string]*PackageEntry)}
}

// Package returns the entry for a package id, if present.
func (idx *RegistryIndex) Package(id string) (*PackageEntry, bool) {
	entry, ok := idx.Packages[id]
	return entry, ok
}

// PackageIDs returns all package ids in sorted order.
func (idx *RegistryIndex) PackageIDs() []string {
	ids := make([]string, 0, len(idx.Packages))
	for id := range idx.Packages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a deep copy of the index. The index builder works on a
// copy so a failed application never leaves a half-mutated index behind.
func (idx *RegistryIndex) Clone() *RegistryIndex {
	out := NewRegistryIndex()
	for id, entry := range idx.Packages {
		out.Packages[id] = entry.Clone()
	}
	return out
}
