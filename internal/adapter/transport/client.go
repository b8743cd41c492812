// Package transport provides the HTTP fetcher used by geocoding providers.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/locationiq-geocoder/internal/domain"
	"github.com/couchcryptid/locationiq-geocoder/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

const (
	defaultUserAgent = "locationiq-geocoder/1.0"
	maxBodyBytes     = 4 << 20
)

// Client performs rate-limited GET requests and maps provider HTTP statuses
// onto domain errors.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
}

// Option customizes a Client.
type Option func(*Client)

// WithRateLimit caps outgoing requests at perSecond with the given burst.
// A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithMetrics records request durations and response codes.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithClock sets the clock used to time requests.
func WithClock(clk clockwork.Clock) Option {
	return func(c *Client) { c.clock = clk }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a transport client with the given request timeout.
func New(timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  defaultUserAgent,
		logger:     logger,
		clock:      clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch GETs rawURL and returns the response body.
//
// 401 and 403 map to domain.ErrInvalidCredentials, 429 to
// domain.ErrQuotaExceeded. A 404 with a body is returned as-is: LocationIQ
// answers "nothing found" that way and the document says so. Any other
// non-2xx status, or an empty body, is a *domain.InvalidServerResponseError.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	endpoint := endpointLabel(rawURL)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s rate limit wait: %w", endpoint, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", redact(err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/xml, text/xml")

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observeDuration(endpoint, start)
		c.logger.Warn("geocode request failed", "endpoint", endpoint, "url", domain.RedactURL(rawURL), "error", redact(err))
		return nil, fmt.Errorf("%s geocode request: %w", endpoint, redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.observeDuration(endpoint, start)
	c.observeStatus(endpoint, resp.StatusCode)
	if err != nil {
		return nil, fmt.Errorf("%s read response: %w", endpoint, redact(err))
	}

	c.logger.Debug("geocode response", "endpoint", endpoint, "status", resp.StatusCode, "bytes", len(body))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", domain.ErrInvalidCredentials, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", domain.ErrQuotaExceeded, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound && len(strings.TrimSpace(string(body))) > 0:
		return body, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &domain.InvalidServerResponseError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        errors.New(snippet(body)),
		}
	case len(strings.TrimSpace(string(body))) == 0:
		return nil, &domain.InvalidServerResponseError{URL: rawURL, Err: errors.New("empty response body")}
	}
	return body, nil
}

func (c *Client) observeDuration(endpoint string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.GeocodeAPIDuration.WithLabelValues(endpoint).Observe(c.clock.Since(start).Seconds())
}

func (c *Client) observeStatus(endpoint string, code int) {
	if c.metrics == nil {
		return
	}
	c.metrics.GeocodeAPIStatus.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
}

// endpointLabel derives a low-cardinality metric label from the request path,
// e.g. ".../v1/search.php" becomes "search".
func endpointLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "unknown"
	}
	base := strings.TrimSuffix(path.Base(u.Path), ".php")
	if base == "" || base == "." || base == "/" {
		return "unknown"
	}
	return base
}

// redact strips the API key from a *url.Error so it never reaches logs.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = domain.RedactURL(urlErr.URL)
	}
	return err
}

func snippet(body []byte) string {
	const maxSnippet = 200
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "empty response body"
	}
	if len(s) > maxSnippet {
		s = s[:maxSnippet] + "..."
	}
	return s
}
