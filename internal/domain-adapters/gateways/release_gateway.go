package gateways

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// defaultAPIBaseURL is the GitHub REST API root.
const defaultAPIBaseURL = "https://api.github.com"

// HTTPReleaseGateway implements gateways.ReleaseGateway against the
// GitHub releases API. An empty token works for public repositories
// within unauthenticated rate limits.
type HTTPReleaseGateway struct {
	client    *http.Client
	baseURL   string
	token     string
	userAgent string
}

// NewHTTPReleaseGateway creates a new release gateway
func NewHTTPReleaseGateway(token string) *HTTPReleaseGateway {
	return &HTTPReleaseGateway{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   defaultAPIBaseURL,
		token:     token,
		userAgent: "rayforge-registry/1.0",
	}
}

// WithBaseURL overrides the API root (used in tests).
func (g *HTTPReleaseGateway) WithBaseURL(baseURL string) *HTTPReleaseGateway {
	g.baseURL = baseURL
	return g
}

// TagExists reports whether the tag has a published release on the
// repository (owner/name).
func (g *HTTPReleaseGateway) TagExists(ctx context.Context, repo, tag string) (bool, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/tags/%s", g.baseURL, repo, tag)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("querying release: %w", err)
	}
	//nolint:errcheck // Defer close
	defer resp.Body.Close()

	if err := checkRateLimit(resp); err != nil {
		return false, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status %d from releases API", resp.StatusCode)
	}
}

// checkRateLimit inspects GitHub rate limit headers and fails fast when
// the quota is exhausted instead of waiting out the reset window.
func checkRateLimit(resp *http.Response) error {
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	if remaining == "" {
		return nil
	}

	remainingInt, err := strconv.Atoi(remaining)
	if err != nil {
		return nil
	}

	if remainingInt == 0 {
		reset := resp.Header.Get("X-RateLimit-Reset")
		return fmt.Errorf("GitHub API rate limit exhausted (resets at %s)", reset)
	}

	return nil
}
