package domain

import (
	"math"
	"sort"
)

const (
	minAdminLevel = 1
	maxAdminLevel = 5
)

// AddressBuilder accumulates address fields and produces an immutable Address.
// Setters never fail; values that break an invariant are discarded.
type AddressBuilder struct {
	providedBy  string
	coordinates *Coordinates
	bounds      *Bounds
	adminLevels map[int]string

	streetNumber string
	streetName   string
	postalCode   string
	locality     string
	subLocality  string
	country      string
	countryCode  string
}

// NewAddressBuilder returns a builder for addresses from the named provider.
func NewAddressBuilder(providedBy string) *AddressBuilder {
	return &AddressBuilder{
		providedBy:  providedBy,
		adminLevels: make(map[int]string),
	}
}

// SetCoordinates sets the address position. Invalid pairs clear it.
func (b *AddressBuilder) SetCoordinates(lat, lon float64) *AddressBuilder {
	if !validLatitude(lat) || !validLongitude(lon) {
		b.coordinates = nil
		return b
	}
	b.coordinates = &Coordinates{Latitude: lat, Longitude: lon}
	return b
}

// SetBounds sets the address extent. Invalid extents clear it.
func (b *AddressBuilder) SetBounds(south, north, west, east float64) *AddressBuilder {
	if !validLatitude(south) || !validLatitude(north) || south > north ||
		!validLongitude(west) || !validLongitude(east) {
		b.bounds = nil
		return b
	}
	b.bounds = &Bounds{South: south, North: north, West: west, East: east}
	return b
}

// AddAdminLevel records an administrative division. Levels outside 1..5 and
// empty names are ignored; a repeated level replaces the previous name.
func (b *AddressBuilder) AddAdminLevel(level int, name string) *AddressBuilder {
	if level < minAdminLevel || level > maxAdminLevel || name == "" {
		return b
	}
	b.adminLevels[level] = name
	return b
}

func (b *AddressBuilder) SetStreetNumber(v string) *AddressBuilder { b.streetNumber = v; return b }
func (b *AddressBuilder) SetStreetName(v string) *AddressBuilder   { b.streetName = v; return b }
func (b *AddressBuilder) SetPostalCode(v string) *AddressBuilder   { b.postalCode = v; return b }
func (b *AddressBuilder) SetLocality(v string) *AddressBuilder     { b.locality = v; return b }
func (b *AddressBuilder) SetSubLocality(v string) *AddressBuilder  { b.subLocality = v; return b }
func (b *AddressBuilder) SetCountry(v string) *AddressBuilder      { b.country = v; return b }
func (b *AddressBuilder) SetCountryCode(v string) *AddressBuilder  { b.countryCode = v; return b }

// Build returns the accumulated Address. The builder can be discarded afterwards.
func (b *AddressBuilder) Build() Address {
	addr := Address{
		ProvidedBy:   b.providedBy,
		StreetNumber: b.streetNumber,
		StreetName:   b.streetName,
		PostalCode:   b.postalCode,
		Locality:     b.locality,
		SubLocality:  b.subLocality,
		Country:      b.country,
		CountryCode:  b.countryCode,
	}
	if b.coordinates != nil {
		c := *b.coordinates
		addr.Coordinates = &c
	}
	if b.bounds != nil {
		bb := *b.bounds
		addr.Bounds = &bb
	}
	if len(b.adminLevels) > 0 {
		addr.AdminLevels = make([]AdminLevel, 0, len(b.adminLevels))
		for level, name := range b.adminLevels {
			addr.AdminLevels = append(addr.AdminLevels, AdminLevel{Level: level, Name: name})
		}
		sort.Slice(addr.AdminLevels, func(i, j int) bool {
			return addr.AdminLevels[i].Level < addr.AdminLevels[j].Level
		})
	}
	return addr
}

func validLatitude(v float64) bool {
	return !math.IsNaN(v) && v >= -90 && v <= 90
}

func validLongitude(v float64) bool {
	return !math.IsNaN(v) && v >= -180 && v <= 180
}
