package gateways

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newTestProber builds a prober that talks to the test server directly,
// without the DNS-caching transport or retry delays.
func newTestProber() *AssetProber {
	return NewAssetProber(
		WithHTTPClient(&http.Client{Timeout: 5 * time.Second}),
		WithMaxRetries(1),
		WithBaseDelay(time.Millisecond),
	)
}

func TestProbeAsset_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.Header().Set("Content-Length", "1234")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	size, err := newTestProber().ProbeAsset(context.Background(), srv.URL+"/asset.zip")
	if err != nil {
		t.Fatalf("ProbeAsset error: %v", err)
	}
	if size != 1234 {
		t.Errorf("size = %d, want 1234", size)
	}
}

func TestProbeAsset_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestProber().ProbeAsset(context.Background(), srv.URL+"/missing.zip")
	if !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("error = %v, want ErrAssetNotFound", err)
	}
}

func TestProbeAsset_RetriesServerErrors(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if _, err := newTestProber().ProbeAsset(context.Background(), srv.URL+"/flaky.zip"); err != nil {
		t.Fatalf("ProbeAsset error: %v", err)
	}
	if hits != 2 {
		t.Errorf("hits = %d, want 2", hits)
	}
}

func TestProbeAsset_CircuitBreakerTrips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	prober := NewAssetProber(
		WithHTTPClient(&http.Client{Timeout: 5 * time.Second}),
		WithMaxRetries(0),
		WithBaseDelay(time.Millisecond),
	)

	// Drive the breaker past its consecutive-failure threshold.
	for i := 0; i < 6; i++ {
		_, _ = prober.ProbeAsset(context.Background(), srv.URL+"/down.zip")
	}

	states := prober.BreakerStates()
	if len(states) != 1 {
		t.Fatalf("breaker states = %v, want one host", states)
	}
	for host, state := range states {
		if state != "open" {
			t.Errorf("breaker for %s = %s, want open", host, state)
		}
	}
}

func TestExtractHost(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/acme/pkg/releases/download/v1/a.zip", "github.com"},
		{"https://cdn.example.com:8443/a.zip", "cdn.example.com:8443"},
		{"not a url", "not a url"},
	}

	for _, tt := range tests {
		if got := extractHost(tt.url); got != tt.want {
			t.Errorf("extractHost(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
