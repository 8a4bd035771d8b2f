package gateways

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeAsset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "asset.zip")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVerifyFile_Match(t *testing.T) {
	path := writeAsset(t, "release content")
	sum := sha256.Sum256([]byte("release content"))

	v := NewChecksumVerifier()
	if err := v.VerifyFile(context.Background(), path, hex.EncodeToString(sum[:])); err != nil {
		t.Errorf("VerifyFile error: %v", err)
	}
}

func TestVerifyFile_Mismatch(t *testing.T) {
	path := writeAsset(t, "release content")

	v := NewChecksumVerifier()
	err := v.VerifyFile(context.Background(), path, strings.Repeat("0", 64))
	if err == nil {
		t.Fatal("expected mismatch error, got nil")
	}
	if !strings.Contains(err.Error(), "checksum mismatch") {
		t.Errorf("error = %v, want checksum mismatch", err)
	}
}

func TestVerifyFile_MissingFile(t *testing.T) {
	v := NewChecksumVerifier()
	if err := v.VerifyFile(context.Background(), "/nonexistent/asset.zip", strings.Repeat("0", 64)); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestHashFile(t *testing.T) {
	path := writeAsset(t, "abc")

	v := NewChecksumVerifier()
	got, err := v.HashFile(path)
	if err != nil {
		t.Fatalf("HashFile error: %v", err)
	}

	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("HashFile = %s, want %s", got, want)
	}
}
