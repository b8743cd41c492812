// Package domain models normalized addresses returned by the LocationIQ
// geocoding API and the queries that produce them.
//
// # Addresses
//
// An [Address] is built once per matched result through an [AddressBuilder]
// and never mutated afterwards. The builder owns the model's invariants:
//
//	Coordinates: latitude within [-90, 90], longitude within [-180, 180].
//	             Out-of-range or non-numeric pairs are dropped, not reported.
//	Bounds:      south <= north, each value a valid latitude/longitude.
//	Admin levels: 1..5, non-empty name. State is level 1, county level 2.
//	             Adding a level twice keeps the last value.
//
// # Collections
//
// An [AddressCollection] preserves the document order of the provider
// response. An empty collection is a normal outcome: the provider found
// nothing, or (for reverse lookups) reported that no address exists at the
// requested point.
//
// # Queries
//
// [GeocodeQuery] and [ReverseQuery] are immutable values validated at
// construction. Limits and zoom levels are passed to the provider as-is;
// LocationIQ is the authority on their accepted ranges.
//
// # Lookup messages
//
// [LookupRequest] and [LookupResult] are the JSON envelopes exchanged on the
// batch lookup topics. A request is keyed by its ID; results reuse the same
// key so consumers can correlate them.
package domain
