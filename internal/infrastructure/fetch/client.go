package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/comparapy/backend/internal/domain"
)

const maxAttempts = 3

// Client retrieves raw markup from source sites. Requests are rate limited
// across all sources so concurrent scrape fan-out doesn't hammer anyone.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	debug       bool
}

// ClientConfig holds fetcher configuration
type ClientConfig struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
}

// NewClient creates a fetch client with sane production defaults.
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}

	burst := config.Burst
	if burst <= 0 {
		burst = 5
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.6045.159 Safari/537.36"
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		userAgent:   userAgent,
	}
}

// SetDebug enables request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Fetch returns the markup at url. Transient failures are retried with
// backoff; a request that never succeeds fails with an error wrapping
// domain.ErrFetchFailed so callers can degrade the source to zero items.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}

		body, err := c.doRequest(ctx, url)
		if err == nil {
			return body, nil
		}

		if c.debug {
			log.Printf("[FETCH] attempt %d for %q failed: %v", attempt, url, err)
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt*500) * time.Millisecond):
		}
	}

	return "", fmt.Errorf("%w: %s: %v", domain.ErrFetchFailed, url, lastErr)
}

func (c *Client) doRequest(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return string(body), nil
}
