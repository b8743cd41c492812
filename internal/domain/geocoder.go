package domain

import "context"

// Geocoder resolves queries to normalized addresses.
type Geocoder interface {
	// Geocode converts free text to matching addresses.
	Geocode(ctx context.Context, q GeocodeQuery) (AddressCollection, error)

	// Reverse converts coordinates to the address at that point.
	Reverse(ctx context.Context, q ReverseQuery) (AddressCollection, error)

	// Name identifies the provider that produced the addresses.
	Name() string
}
