// Package gateways defines interfaces for external system access.
package gateways

import "context"

// AssetProber checks that a declared release asset is reachable without
// downloading it.
type AssetProber interface {
	// ProbeAsset issues a metadata-only request for the asset URL and
	// returns its size (-1 if unknown).
	ProbeAsset(ctx context.Context, url string) (size int64, err error)
}

// ReleaseGateway answers questions about releases on the source forge.
type ReleaseGateway interface {
	// TagExists reports whether the given tag exists as a release on
	// the repository (owner/name).
	TagExists(ctx context.Context, repo, tag string) (bool, error)
}

// SignatureVerifier verifies a detached signature over a submission payload.
type SignatureVerifier interface {
	// VerifyDetached checks the signature against the imported keyring.
	VerifyDetached(ctx context.Context, payload, signature []byte) error
}
