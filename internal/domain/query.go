package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

const (
	// DefaultLimit is the number of results requested when a query sets none.
	DefaultLimit = 5

	// DefaultZoom is the reverse lookup detail level used when a query sets none.
	DefaultZoom = 18
)

// GeocodeQuery asks for the addresses matching a free-text search.
type GeocodeQuery struct {
	Text   string
	Limit  int
	Locale string
}

// GeocodeOption customizes a GeocodeQuery.
type GeocodeOption func(*GeocodeQuery)

// WithLimit sets the maximum number of results. The provider enforces its own range.
func WithLimit(n int) GeocodeOption {
	return func(q *GeocodeQuery) { q.Limit = n }
}

// WithGeocodeLocale sets the preferred response language.
func WithGeocodeLocale(locale string) GeocodeOption {
	return func(q *GeocodeQuery) { q.Locale = locale }
}

// NewGeocodeQuery validates and returns a forward geocoding query.
func NewGeocodeQuery(text string, opts ...GeocodeOption) (GeocodeQuery, error) {
	q := GeocodeQuery{Text: strings.TrimSpace(text), Limit: DefaultLimit}
	for _, opt := range opts {
		opt(&q)
	}
	if q.Text == "" {
		return GeocodeQuery{}, fmt.Errorf("%w: geocode query cannot be empty", ErrInvalidArgument)
	}
	if err := validateLocale(q.Locale); err != nil {
		return GeocodeQuery{}, err
	}
	return q, nil
}

// ReverseQuery asks for the address at a point.
type ReverseQuery struct {
	Coordinates Coordinates
	Zoom        *int // nil means DefaultZoom
	Locale      string
}

// ReverseOption customizes a ReverseQuery.
type ReverseOption func(*ReverseQuery)

// WithZoom sets the reverse lookup detail level.
func WithZoom(zoom int) ReverseOption {
	return func(q *ReverseQuery) { q.Zoom = &zoom }
}

// WithReverseLocale sets the preferred response language.
func WithReverseLocale(locale string) ReverseOption {
	return func(q *ReverseQuery) { q.Locale = locale }
}

// NewReverseQuery validates and returns a reverse geocoding query.
func NewReverseQuery(lat, lon float64, opts ...ReverseOption) (ReverseQuery, error) {
	if !validLatitude(lat) {
		return ReverseQuery{}, fmt.Errorf("%w: latitude %v out of range", ErrInvalidArgument, lat)
	}
	if !validLongitude(lon) {
		return ReverseQuery{}, fmt.Errorf("%w: longitude %v out of range", ErrInvalidArgument, lon)
	}
	q := ReverseQuery{Coordinates: Coordinates{Latitude: lat, Longitude: lon}}
	for _, opt := range opts {
		opt(&q)
	}
	if err := validateLocale(q.Locale); err != nil {
		return ReverseQuery{}, err
	}
	return q, nil
}

// ZoomOrDefault returns the zoom to send to the provider. An explicit zoom
// of 0 is kept; only an unset zoom falls back to DefaultZoom.
func (q ReverseQuery) ZoomOrDefault() int {
	if q.Zoom == nil {
		return DefaultZoom
	}
	return *q.Zoom
}

// validateLocale accepts an empty locale or any Accept-Language value.
func validateLocale(locale string) error {
	if locale == "" {
		return nil
	}
	if _, _, err := language.ParseAcceptLanguage(locale); err != nil {
		return fmt.Errorf("%w: locale %q: %v", ErrInvalidArgument, locale, err)
	}
	return nil
}
