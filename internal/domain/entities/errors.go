package entities

import "errors"

// Registry error kinds. Validation errors are reported synchronously to
// the submitting CI run and never mutate the index.
var (
	// ErrNotAllowListed rejects submissions from repositories absent
	// from the allow-list, or claiming a package owned by another repo.
	ErrNotAllowListed = errors.New("repository is not allow-listed")

	// ErrMalformedManifest rejects submissions whose manifest fails
	// schema or content checks.
	ErrMalformedManifest = errors.New("malformed package manifest")

	// ErrVersionNotMonotonic rejects versions that are not strictly
	// greater than the highest version already recorded for the package.
	ErrVersionNotMonotonic = errors.New("version is not strictly greater than the latest recorded version")

	// ErrChecksumConflict rejects a resubmission of an existing version
	// with different asset checksums.
	ErrChecksumConflict = errors.New("version already recorded with different checksums")

	// ErrPersistenceFailure marks a failed index write. The prior index
	// state remains authoritative.
	ErrPersistenceFailure = errors.New("failed to persist registry index")
)
