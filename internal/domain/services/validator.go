package services

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/rayforge/registry/internal/domain/entities"
)

// ValidationStatus classifies the outcome of validating a submission
type ValidationStatus string

// Submission validation statuses
const (
	StatusAccepted            ValidationStatus = "accepted"
	StatusNotAllowListed      ValidationStatus = "not_allow_listed"
	StatusMalformedManifest   ValidationStatus = "malformed_manifest"
	StatusVersionNotMonotonic ValidationStatus = "version_not_monotonic"
)

// placeholderAuthor is the value shipped in the package template; seeing
// it means the publisher never filled in their metadata.
const placeholderAuthor = "your-github-username"

// SubmissionValidation contains the validation result for a submission
type SubmissionValidation struct {
	Status ValidationStatus
	Reason string
}

// Accepted returns true if the submission passed all checks
func (v *SubmissionValidation) Accepted() bool {
	return v.Status == StatusAccepted
}

// Err maps a rejected validation onto its registry error kind. Returns
// nil for accepted submissions.
func (v *SubmissionValidation) Err() error {
	switch v.Status {
	case StatusAccepted:
		return nil
	case StatusNotAllowListed:
		return fmt.Errorf("%w: %s", entities.ErrNotAllowListed, v.Reason)
	case StatusMalformedManifest:
		return fmt.Errorf("%w: %s", entities.ErrMalformedManifest, v.Reason)
	case StatusVersionNotMonotonic:
		return fmt.Errorf("%w: %s", entities.ErrVersionNotMonotonic, v.Reason)
	default:
		return fmt.Errorf("submission rejected: %s", v.Reason)
	}
}

// ValidatorService checks submissions against the allow-list and the
// current index. All checks are pure: no side effects, no I/O.
type ValidatorService struct{}

// NewValidatorService creates a new validator service
func NewValidatorService() *ValidatorService {
	return &ValidatorService{}
}

// ValidateSubmission runs the full check sequence: allow-list membership,
// tag well-formedness, manifest schema and content, and version monotonicity
// against the current index.
func (s *ValidatorService) ValidateSubmission(sub *entities.Submission, allowlist *entities.Allowlist, index *entities.RegistryIndex) *SubmissionValidation {
	if sub.Repository == "" || !strings.Contains(sub.Repository, "/") {
		return reject(StatusMalformedManifest, "repository must be in owner/name form")
	}

	if !allowlist.Contains(sub.Repository) {
		return reject(StatusNotAllowListed, fmt.Sprintf("repository %q is not on the allowlist", sub.Repository))
	}

	if v := s.validateTag(sub.Tag); !v.Accepted() {
		return v
	}

	if v := s.ValidateManifest(&sub.Manifest); !v.Accepted() {
		return v
	}

	if entry, ok := index.Package(sub.PackageID()); ok {
		// A package id belongs to the repository that first published it.
		if entry.Repository != sub.RepositoryURL() {
			return reject(StatusNotAllowListed,
				fmt.Sprintf("package %q is owned by %s", sub.PackageID(), entry.Repository))
		}

		if highest := entry.HighestVersion(); highest != "" && semver.Compare(sub.Tag, highest) <= 0 {
			return reject(StatusVersionNotMonotonic,
				fmt.Sprintf("version %s is not greater than latest recorded version %s", sub.Tag, highest))
		}
	}

	return &SubmissionValidation{Status: StatusAccepted}
}

// validateTag checks that the release tag is a valid semantic version.
func (s *ValidatorService) validateTag(tag string) *SubmissionValidation {
	if tag == "" {
		return reject(StatusMalformedManifest, "release tag is required")
	}
	// Tags must carry the v prefix, e.g. v1.2.3.
	if !strings.HasPrefix(tag, "v") || !semver.IsValid(tag) {
		return reject(StatusMalformedManifest,
			fmt.Sprintf("tag %q is not a valid semantic version (e.g. v1.2.3)", tag))
	}
	return &SubmissionValidation{Status: StatusAccepted}
}

// ValidateManifest checks the manifest for schema correctness and content
// consistency. It can be run standalone (local pre-publish check) or as
// part of the full submission sequence.
func (s *ValidatorService) ValidateManifest(m *entities.Manifest) *SubmissionValidation {
	if m.Name == "" {
		return reject(StatusMalformedManifest, "missing required key: name")
	}
	if m.Description == "" {
		return reject(StatusMalformedManifest, "missing required key: description")
	}
	if m.Author == "" {
		return reject(StatusMalformedManifest, "missing required key: author")
	}
	if strings.Contains(m.Author, placeholderAuthor) {
		return reject(StatusMalformedManifest, "placeholder author value detected, update the manifest")
	}

	if len(m.Provides.Assets) == 0 {
		return reject(StatusMalformedManifest, "manifest must declare at least one asset")
	}

	for i, asset := range m.Provides.Assets {
		if asset.URL == "" {
			return reject(StatusMalformedManifest, fmt.Sprintf("asset %d is missing the url key", i))
		}
		if !validChecksum(asset.SHA256) {
			return reject(StatusMalformedManifest,
				fmt.Sprintf("asset %d has a malformed sha256 checksum", i))
		}
		if asset.Path != "" && containsDotDot(asset.Path) {
			return reject(StatusMalformedManifest,
				fmt.Sprintf("invalid asset path %q, paths must not use '..'", asset.Path))
		}
	}

	return &SubmissionValidation{Status: StatusAccepted}
}

// ValidateExpectedName checks that the manifest declares the expected
// package name. Publisher CI passes the name it believes it is releasing
// to catch copy-paste mistakes in the manifest.
func (s *ValidatorService) ValidateExpectedName(m *entities.Manifest, expected string) *SubmissionValidation {
	if expected != "" && m.Name != expected {
		return reject(StatusMalformedManifest,
			fmt.Sprintf("manifest name %q does not match expected name %q", m.Name, expected))
	}
	return &SubmissionValidation{Status: StatusAccepted}
}

func reject(status ValidationStatus, reason string) *SubmissionValidation {
	return &SubmissionValidation{Status: status, Reason: reason}
}

// validChecksum reports whether s is a 64-character lowercase hex string.
func validChecksum(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}

func containsDotDot(p string) bool {
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
