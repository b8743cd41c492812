package domain

import "slices"

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Bounds is a rectangular extent expressed as south/north/west/east limits.
type Bounds struct {
	South float64 `json:"south"`
	North float64 `json:"north"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// AdminLevel is one hierarchical administrative division of an address.
type AdminLevel struct {
	Level int    `json:"level"`
	Name  string `json:"name"`
}

// Address is a normalized address record produced by a geocoding provider.
type Address struct {
	ProvidedBy   string       `json:"provided_by"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	Bounds       *Bounds      `json:"bounds,omitempty"`
	StreetNumber string       `json:"street_number,omitempty"`
	StreetName   string       `json:"street_name,omitempty"`
	PostalCode   string       `json:"postal_code,omitempty"`
	Locality     string       `json:"locality,omitempty"`
	SubLocality  string       `json:"sub_locality,omitempty"`
	Country      string       `json:"country,omitempty"`
	CountryCode  string       `json:"country_code,omitempty"`
	AdminLevels  []AdminLevel `json:"admin_levels,omitempty"`
}

// AdminLevel returns the name of the given administrative level, or "" if
// the address has none.
func (a Address) AdminLevel(level int) string {
	for _, l := range a.AdminLevels {
		if l.Level == level {
			return l.Name
		}
	}
	return ""
}

// AddressCollection is an ordered list of addresses in provider document order.
type AddressCollection []Address

// IsEmpty reports whether the collection holds no addresses.
func (c AddressCollection) IsEmpty() bool { return len(c) == 0 }

// First returns the first address, or false if the collection is empty.
func (c AddressCollection) First() (Address, bool) {
	if len(c) == 0 {
		return Address{}, false
	}
	return c[0], true
}

// Clone returns a deep copy of the address.
func (a Address) Clone() Address {
	if a.Coordinates != nil {
		c := *a.Coordinates
		a.Coordinates = &c
	}
	if a.Bounds != nil {
		b := *a.Bounds
		a.Bounds = &b
	}
	a.AdminLevels = slices.Clone(a.AdminLevels)
	return a
}

// Clone returns a deep copy of the collection. A nil collection stays nil.
func (c AddressCollection) Clone() AddressCollection {
	if c == nil {
		return nil
	}
	out := make(AddressCollection, len(c))
	for i, a := range c {
		out[i] = a.Clone()
	}
	return out
}
