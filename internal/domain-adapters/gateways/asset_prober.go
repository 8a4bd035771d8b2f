package gateways

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cenk/backoff"
	"github.com/rs/dnscache"
	circuit "github.com/rubyist/circuitbreaker"
)

// Probe failure classes
var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrRateLimited   = errors.New("rate limited by asset host")
	ErrHostDown      = errors.New("asset host unavailable")
)

// AssetProber checks declared release assets for reachability via HEAD
// requests. Transient failures are retried with exponential backoff and
// jitter; each asset host gets its own circuit breaker so one flaky host
// cannot stall submissions referencing healthy hosts.
type AssetProber struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration

	mu       sync.RWMutex
	breakers map[string]*circuit.Breaker
}

// ProberOption configures an AssetProber.
type ProberOption func(*AssetProber)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ProberOption {
	return func(p *AssetProber) {
		p.client = c
	}
}

// WithMaxRetries sets the maximum retry attempts per probe.
func WithMaxRetries(n int) ProberOption {
	return func(p *AssetProber) {
		p.maxRetries = n
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
func WithBaseDelay(d time.Duration) ProberOption {
	return func(p *AssetProber) {
		p.baseDelay = d
	}
}

// NewAssetProber creates a new prober with a DNS-caching transport.
func NewAssetProber(opts ...ProberOption) *AssetProber {
	resolver := &dnscache.Resolver{}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			resolver.Refresh(true)
		}
	}()

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	p := &AssetProber{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := resolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					for _, ip := range ips {
						conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if err == nil {
							return conn, nil
						}
					}
					return nil, fmt.Errorf("failed to dial any resolved IP")
				},
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent:  "rayforge-registry/1.0",
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
		breakers:   make(map[string]*circuit.Breaker),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProbeAsset issues a HEAD request for the asset URL and returns its size
// (-1 if unknown). The per-host circuit breaker is consulted first.
func (p *AssetProber) ProbeAsset(ctx context.Context, assetURL string) (int64, error) {
	host := extractHost(assetURL)
	breaker := p.getBreaker(host)

	if !breaker.Ready() {
		return 0, fmt.Errorf("circuit breaker open for host %s: %w", host, ErrHostDown)
	}

	var size int64
	err := breaker.Call(func() error {
		var probeErr error
		size, probeErr = p.head(ctx, assetURL)
		return probeErr
	}, 0)

	return size, err
}

// BreakerStates returns the current circuit breaker states per host.
func (p *AssetProber) BreakerStates() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	states := make(map[string]string, len(p.breakers))
	for host, breaker := range p.breakers {
		if breaker.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}

// getBreaker returns or creates the circuit breaker for a host.
func (p *AssetProber) getBreaker(host string) *circuit.Breaker {
	p.mu.RLock()
	breaker, exists := p.breakers[host]
	p.mu.RUnlock()

	if exists {
		return breaker
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring write lock
	if breaker, exists := p.breakers[host]; exists {
		return breaker
	}

	// Trips after 5 consecutive failures, recovers on exponential backoff
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	breaker = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	})

	p.breakers[host] = breaker
	return breaker
}

// head performs the HEAD request with retries on transient failures.
func (p *AssetProber) head(ctx context.Context, assetURL string) (int64, error) {
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff with 10% jitter
			delay := p.baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			delay += time.Duration(float64(delay) * (rand.Float64() * 0.1))

			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(delay):
			}
		}

		size, err := p.doHead(ctx, assetURL)
		if err == nil {
			return size, nil
		}
		lastErr = err

		// Missing assets are a validation outcome, not a transient fault
		if errors.Is(err, ErrAssetNotFound) {
			return 0, err
		}
		if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrHostDown) {
			continue
		}
		return 0, err
	}

	return 0, lastErr
}

func (p *AssetProber) doHead(ctx context.Context, assetURL string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, assetURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probing asset: %w", err)
	}
	_ = resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		size := int64(-1)
		if cl := resp.Header.Get("Content-Length"); cl != "" {
			if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
				size = n
			}
		}
		return size, nil

	case resp.StatusCode == http.StatusNotFound:
		return 0, ErrAssetNotFound

	case resp.StatusCode == http.StatusTooManyRequests:
		return 0, ErrRateLimited

	case resp.StatusCode >= 500:
		return 0, ErrHostDown

	default:
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

// extractHost extracts the asset host for circuit breaker grouping.
func extractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}
