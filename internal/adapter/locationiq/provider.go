// Package locationiq implements domain.Geocoder against the LocationIQ
// search and reverse APIs, using their XML (xmlv1.1) response format.
package locationiq

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/locationiq-geocoder/internal/domain"
	"github.com/couchcryptid/locationiq-geocoder/internal/observability"
)

// Name identifies addresses produced by this provider.
const Name = "locationiq"

// Region selects the LocationIQ API host.
type Region string

const (
	RegionUS Region = "us1"
	RegionEU Region = "eu1"
)

// Regions lists the supported regions. The first entry is the default.
var Regions = []Region{RegionUS, RegionEU}

const baseURLTemplate = "https://%s.locationiq.com/v1"

// Fetcher performs the HTTP GET for a fully-built request URL and returns the
// raw response body. Errors are returned to the caller unchanged.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Provider implements domain.Geocoder using the LocationIQ API.
type Provider struct {
	fetcher Fetcher
	apiKey  string
	region  Region
	baseURL string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option customizes a Provider.
type Option func(*Provider)

// WithLogger sets the provider logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithMetrics records lookup outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Provider) { p.metrics = m }
}

// WithBaseURL overrides the region-derived API root, e.g. for a self-hosted
// gateway or a test server.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimSuffix(u, "/") }
}

var _ domain.Geocoder = (*Provider)(nil)

// New creates a LocationIQ provider. An empty region selects RegionUS.
func New(fetcher Fetcher, apiKey string, region Region, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: no API key provided", domain.ErrInvalidCredentials)
	}
	if region == "" {
		region = Regions[0]
	}
	if !validRegion(region) {
		return nil, fmt.Errorf("%w: region must be one of: %s", domain.ErrInvalidArgument, regionList())
	}

	p := &Provider{
		fetcher: fetcher,
		apiKey:  apiKey,
		region:  region,
		baseURL: fmt.Sprintf(baseURLTemplate, region),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return Name }

// Region returns the configured API region.
func (p *Provider) Region() Region { return p.region }

// Geocode looks up addresses matching free text. A response without matches
// yields an empty collection; a malformed response is an
// *domain.InvalidServerResponseError.
func (p *Provider) Geocode(ctx context.Context, q domain.GeocodeQuery) (domain.AddressCollection, error) {
	u := p.buildGeocodeURL(q)

	body, err := p.executeQuery(ctx, u)
	if err != nil {
		p.observe(domain.LookupGeocode, nil, err)
		return nil, err
	}

	addrs, err := parseGeocode(body, u)
	if err != nil {
		p.logger.Warn("invalid geocode response", "provider", Name, "url", domain.RedactURL(u), "error", err)
	}
	p.observe(domain.LookupGeocode, addrs, err)
	return addrs, err
}

// Reverse looks up the address at a point. LocationIQ reports "nothing here"
// through an <error> element; that and any unparsable body yield an empty
// collection rather than an error.
func (p *Provider) Reverse(ctx context.Context, q domain.ReverseQuery) (domain.AddressCollection, error) {
	u := p.buildReverseURL(q)

	body, err := p.executeQuery(ctx, u)
	if err != nil {
		p.observe(domain.LookupReverse, nil, err)
		return nil, err
	}

	addrs := parseReverse(body)
	if addrs.IsEmpty() {
		p.logger.Debug("no address at point", "provider", Name,
			"lat", q.Coordinates.Latitude, "lon", q.Coordinates.Longitude)
	}
	p.observe(domain.LookupReverse, addrs, nil)
	return addrs, nil
}

func (p *Provider) executeQuery(ctx context.Context, u string) ([]byte, error) {
	p.logger.Debug("locationiq request", "url", domain.RedactURL(u))
	return p.fetcher.Fetch(ctx, u)
}

func (p *Provider) observe(method string, addrs domain.AddressCollection, err error) {
	if p.metrics == nil {
		return
	}
	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case addrs.IsEmpty():
		outcome = "empty"
	}
	p.metrics.GeocodeRequests.WithLabelValues(method, outcome).Inc()
}

func validRegion(r Region) bool {
	for _, known := range Regions {
		if r == known {
			return true
		}
	}
	return false
}

func regionList() string {
	names := make([]string, len(Regions))
	for i, r := range Regions {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
