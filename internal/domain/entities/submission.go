package entities

import (
	"fmt"
	"path"
	"strings"
)

// Submission is a CI-originated request to add a new package version to
// the registry. Once accepted, the release it describes is immutable.
type Submission struct {
	Repository string // owner/name of the publishing repository
	Tag        string // release tag, e.g. v1.2.3
	Manifest   Manifest
}

// PackageID derives the registry key for this submission: the basename
// of the publishing repository.
func (s *Submission) PackageID() string {
	return path.Base(s.Repository)
}

// RepositoryURL returns the canonical GitHub URL for the publishing repository.
func (s *Submission) RepositoryURL() string {
	return fmt.Sprintf("https://github.com/%s", s.Repository)
}

// PURL returns the package-url identifier for the submitted package.
func (s *Submission) PURL() string {
	return fmt.Sprintf("pkg:github/%s", strings.ToLower(s.Repository))
}

// Manifest is the package metadata shipped inside a submission payload.
type Manifest struct {
	Name        string
	Description string
	Author      string
	Provides    Provides
}

// Provides declares what a package release ships.
type Provides struct {
	Assets []Asset
}

// Asset is a single downloadable artifact of a release.
type Asset struct {
	Path   string // path inside the source repository, optional
	URL    string // download URL for installers
	SHA256 string // hex-encoded SHA256 of the artifact
}
