package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/locationiq-geocoder/internal/domain"
	"github.com/couchcryptid/locationiq-geocoder/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	var seen http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = *r.Clone(context.Background())
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestFetch_ReturnsBody(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, "<searchresults/>")
	c := New(time.Second, discardLogger(), WithUserAgent("geocoder-test"))

	body, err := c.Fetch(context.Background(), srv.URL+"/v1/search.php?q=paris&key=secret")
	require.NoError(t, err)

	assert.Equal(t, "<searchresults/>", string(body))
	assert.Equal(t, "geocoder-test", seen.Header.Get("User-Agent"))
	assert.Equal(t, "/v1/search.php", seen.URL.Path)
	assert.Equal(t, "paris", seen.URL.Query().Get("q"))
}

func TestFetch_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, domain.ErrInvalidCredentials},
		{"forbidden", http.StatusForbidden, domain.ErrInvalidCredentials},
		{"too many requests", http.StatusTooManyRequests, domain.ErrQuotaExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.status, `{"error":"nope"}`)
			c := New(time.Second, discardLogger())

			_, err := c.Fetch(context.Background(), srv.URL+"/v1/search.php?key=secret")
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFetch_UnexpectedStatus(t *testing.T) {
	srv, _ := newServer(t, http.StatusInternalServerError, "upstream exploded")
	c := New(time.Second, discardLogger())
	u := srv.URL + "/v1/reverse.php?lat=1&key=secret"

	_, err := c.Fetch(context.Background(), u)

	var invalid *domain.InvalidServerResponseError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, http.StatusInternalServerError, invalid.StatusCode)
	assert.Equal(t, u, invalid.URL)
	assert.Contains(t, err.Error(), "upstream exploded")
	assert.NotContains(t, err.Error(), "secret")
}

func TestFetch_NotFoundPassesDocumentThrough(t *testing.T) {
	srv, _ := newServer(t, http.StatusNotFound, "<reversegeocode><error>Unable to geocode</error></reversegeocode>")
	c := New(time.Second, discardLogger())

	body, err := c.Fetch(context.Background(), srv.URL+"/v1/reverse.php")
	require.NoError(t, err)
	assert.Contains(t, string(body), "Unable to geocode")
}

func TestFetch_NotFoundWithoutBody(t *testing.T) {
	srv, _ := newServer(t, http.StatusNotFound, "")
	c := New(time.Second, discardLogger())

	_, err := c.Fetch(context.Background(), srv.URL+"/v1/reverse.php")

	var invalid *domain.InvalidServerResponseError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, http.StatusNotFound, invalid.StatusCode)
}

func TestFetch_EmptyBody(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, "  \n")
	c := New(time.Second, discardLogger())

	_, err := c.Fetch(context.Background(), srv.URL+"/v1/search.php")

	var invalid *domain.InvalidServerResponseError
	require.ErrorAs(t, err, &invalid)
	assert.Zero(t, invalid.StatusCode)
}

func TestFetch_ConnectionErrorRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL + "/v1/search.php?q=x&key=secret"
	srv.Close()

	c := New(time.Second, discardLogger())
	_, err := c.Fetch(context.Background(), u)

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
	assert.Contains(t, err.Error(), "key=REDACTED")
}

func TestFetch_ContextCanceled(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, "<searchresults/>")
	c := New(time.Second, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx, srv.URL+"/v1/search.php")
	require.ErrorIs(t, err, context.Canceled)
}

func TestFetch_RateLimitWaitHonorsContext(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte("<searchresults/>"))
	}))
	defer srv.Close()

	c := New(time.Second, discardLogger(), WithRateLimit(0.001, 1))

	_, err := c.Fetch(context.Background(), srv.URL+"/v1/search.php")
	require.NoError(t, err)

	// The single token is spent; the next wait outlasts the deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Fetch(ctx, srv.URL+"/v1/search.php")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait")
	assert.Equal(t, 1, hits)
}

func TestFetch_RecordsMetrics(t *testing.T) {
	srv, _ := newServer(t, http.StatusTooManyRequests, "slow down")
	m := observability.NewMetricsForTesting()
	c := New(time.Second, discardLogger(), WithMetrics(m))

	_, err := c.Fetch(context.Background(), srv.URL+"/v1/reverse.php?lat=1")
	require.True(t, errors.Is(err, domain.ErrQuotaExceeded))

	assert.InDelta(t, 1, testutil.ToFloat64(m.GeocodeAPIStatus.WithLabelValues("reverse", "429")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.GeocodeAPIDuration))
}

func TestEndpointLabel(t *testing.T) {
	tests := map[string]string{
		"https://us1.locationiq.com/v1/search.php?q=x":  "search",
		"https://eu1.locationiq.com/v1/reverse.php?x=1": "reverse",
		"https://example.com":                           "unknown",
		"://bad":                                        "unknown",
	}
	for in, want := range tests {
		assert.Equal(t, want, endpointLabel(in), in)
	}
}
