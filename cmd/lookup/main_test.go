package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/couchcryptid/locationiq-geocoder/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGeocoder struct {
	geocode *domain.GeocodeQuery
	reverse *domain.ReverseQuery
}

func (r *recordingGeocoder) Name() string { return "locationiq" }

func (r *recordingGeocoder) Geocode(_ context.Context, q domain.GeocodeQuery) (domain.AddressCollection, error) {
	r.geocode = &q
	return domain.AddressCollection{}, nil
}

func (r *recordingGeocoder) Reverse(_ context.Context, q domain.ReverseQuery) (domain.AddressCollection, error) {
	r.reverse = &q
	return domain.AddressCollection{}, nil
}

func TestLookup_Forward(t *testing.T) {
	g := &recordingGeocoder{}
	_, err := lookup(context.Background(), g, options{text: "Paris", limit: 2, locale: "fr", zoom: 18})
	require.NoError(t, err)

	require.NotNil(t, g.geocode)
	assert.Equal(t, domain.GeocodeQuery{Text: "Paris", Limit: 2, Locale: "fr"}, *g.geocode)
	assert.Nil(t, g.reverse)
}

func TestLookup_Reverse(t *testing.T) {
	g := &recordingGeocoder{}
	_, err := lookup(context.Background(), g, options{lat: "48.8584", lon: "2.2945", zoom: 16, limit: 5})
	require.NoError(t, err)

	require.NotNil(t, g.reverse)
	assert.Equal(t, domain.Coordinates{Latitude: 48.8584, Longitude: 2.2945}, g.reverse.Coordinates)
	assert.Equal(t, 16, g.reverse.ZoomOrDefault())
}

func TestLookup_FlagErrors(t *testing.T) {
	tests := map[string]options{
		"nothing":      {},
		"both modes":   {text: "Paris", lat: "1", lon: "2"},
		"lat only":     {lat: "1"},
		"bad lat":      {lat: "north", lon: "2"},
		"out of range": {lat: "91", lon: "2"},
		"blank text":   {text: "   "},
		"bad locale":   {text: "Paris", locale: "!!!"},
	}
	for name, opts := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := lookup(context.Background(), &recordingGeocoder{}, opts)
			assert.Error(t, err)
		})
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	renderTable(&buf, domain.AddressCollection{{
		StreetNumber: "99",
		StreetName:   "Rue de Rivoli",
		Locality:     "Paris",
		PostalCode:   "75001",
		Country:      "France",
		CountryCode:  "FR",
		Coordinates:  &domain.Coordinates{Latitude: 48.8603732, Longitude: 2.3369873},
		AdminLevels:  []domain.AdminLevel{{Level: 1, Name: "Île-de-France"}},
	}})

	out := buf.String()
	assert.Contains(t, out, "99 Rue de Rivoli")
	assert.Contains(t, out, "France, FR")
	assert.Contains(t, out, "48.86037, 2.33699")
	assert.Contains(t, out, "Île-de-France")
}

func TestJoinNonEmpty(t *testing.T) {
	assert.Equal(t, "a, c", joinNonEmpty("a", "", "c"))
	assert.Empty(t, joinNonEmpty("", ""))
}
