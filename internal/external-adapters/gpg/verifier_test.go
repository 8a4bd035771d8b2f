package gpg

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Test importing key from nonexistent file
func TestVerifier_ImportKeyFromFile_NonexistentFile(t *testing.T) {
	v := NewVerifier()

	err := v.ImportKeyFromFile("/nonexistent/key.asc")

	if err == nil {
		t.Fatal("Expected error for nonexistent file, got nil")
	}
	if !strings.Contains(err.Error(), "failed to open key file") {
		t.Errorf("Expected 'failed to open key file' error, got: %v", err)
	}
}

// Test importing key from file with no keys
func TestVerifier_ImportKeyFromFile_InvalidContent(t *testing.T) {
	v := NewVerifier()
	tmpDir := t.TempDir()

	keyPath := filepath.Join(tmpDir, "invalid.asc")
	if err := os.WriteFile(keyPath, []byte("not a gpg key"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := v.ImportKeyFromFile(keyPath); err == nil {
		t.Fatal("Expected error for invalid key file, got nil")
	}

	if v.KeyringSize() != 0 {
		t.Errorf("Keyring size = %d after failed import, want 0", v.KeyringSize())
	}
}

// Test verification without an imported keyring
func TestVerifier_VerifyDetached_EmptyKeyring(t *testing.T) {
	v := NewVerifier()

	err := v.VerifyDetached(context.Background(), []byte("payload"), []byte("signature-bytes"))

	if err == nil {
		t.Fatal("Expected error for empty keyring, got nil")
	}
	if !strings.Contains(err.Error(), "no GPG keys imported") {
		t.Errorf("Expected 'no GPG keys imported' error, got: %v", err)
	}
}

// Test verification with garbage signature bytes
func TestVerifier_VerifyDetached_GarbageSignature(t *testing.T) {
	v := NewVerifier()

	err := v.VerifyDetached(context.Background(), []byte("payload"), []byte("definitely not a signature"))
	if err == nil {
		t.Fatal("Expected error for garbage signature, got nil")
	}
}
