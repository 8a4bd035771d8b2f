package gateways

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// checksumVerifier hashes downloaded release assets and compares them
// against the checksum recorded in the registry index. Pure Go, no
// external sha256sum binary needed.
type checksumVerifier struct{}

// NewChecksumVerifier creates a new checksum verifier
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewChecksumVerifier() *checksumVerifier {
	return &checksumVerifier{}
}

// VerifyFile checks that the file at path hashes to the expected SHA256.
func (v *checksumVerifier) VerifyFile(_ context.Context, path, expectedSum string) error {
	actualSum, err := v.HashFile(path)
	if err != nil {
		return err
	}

	if actualSum != expectedSum {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expectedSum, actualSum)
	}

	return nil
}

// HashFile returns the hex-encoded SHA256 of the file at path.
func (v *checksumVerifier) HashFile(path string) (string, error) {
	//nolint:gosec // G304: path is the asset the caller asked to verify
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
