package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Lookup request types.
const (
	LookupGeocode = "geocode"
	LookupReverse = "reverse"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LookupRequest is a geocoding request read from the source topic.
type LookupRequest struct {
	ID     string   `json:"id" validate:"max=128"`
	Type   string   `json:"type" validate:"required,oneof=geocode reverse"`
	Text   string   `json:"text,omitempty" validate:"max=1024"`
	Limit  int      `json:"limit,omitempty" validate:"gte=0"`
	Lat    *float64 `json:"lat,omitempty"`
	Lon    *float64 `json:"lon,omitempty"`
	Zoom   *int     `json:"zoom,omitempty" validate:"omitempty,gte=0"`
	Locale string   `json:"locale,omitempty" validate:"max=64"`
}

// ParseLookupRequest decodes and validates a raw lookup request payload.
func ParseLookupRequest(payload []byte) (LookupRequest, error) {
	var req LookupRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return LookupRequest{}, fmt.Errorf("%w: decode lookup request: %v", ErrInvalidArgument, err)
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return LookupRequest{}, fmt.Errorf("%w: field %s failed %q", ErrInvalidArgument, verrs[0].Field(), verrs[0].Tag())
		}
		return LookupRequest{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return req, nil
}

// GeocodeQuery converts a geocode request into a query.
func (r LookupRequest) GeocodeQuery() (GeocodeQuery, error) {
	opts := []GeocodeOption{WithGeocodeLocale(r.Locale)}
	if r.Limit > 0 {
		opts = append(opts, WithLimit(r.Limit))
	}
	return NewGeocodeQuery(r.Text, opts...)
}

// ReverseQuery converts a reverse request into a query.
func (r LookupRequest) ReverseQuery() (ReverseQuery, error) {
	if r.Lat == nil || r.Lon == nil {
		return ReverseQuery{}, fmt.Errorf("%w: reverse lookup requires lat and lon", ErrInvalidArgument)
	}
	opts := []ReverseOption{WithReverseLocale(r.Locale)}
	if r.Zoom != nil {
		opts = append(opts, WithZoom(*r.Zoom))
	}
	return NewReverseQuery(*r.Lat, *r.Lon, opts...)
}

// LookupResult is the outcome of a LookupRequest, written to the sink topic.
type LookupResult struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Provider    string            `json:"provider"`
	Addresses   AddressCollection `json:"addresses"`
	Error       string            `json:"error,omitempty"`
	ProcessedAt time.Time         `json:"processed_at"`
}

// NewLookupResult stamps a result for the given request with the current time.
func NewLookupResult(req LookupRequest, provider string, addrs AddressCollection, lookupErr error) LookupResult {
	if addrs == nil {
		addrs = AddressCollection{}
	}
	res := LookupResult{
		ID:          req.ID,
		Type:        req.Type,
		Provider:    provider,
		Addresses:   addrs,
		ProcessedAt: clock.Now().UTC(),
	}
	if lookupErr != nil {
		res.Error = lookupErr.Error()
	}
	return res
}

// SerializeLookupResult marshals a result into an output message keyed by request ID.
func SerializeLookupResult(res LookupResult) (OutputEvent, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize lookup result: %w", err)
	}
	return OutputEvent{
		Key:   []byte(res.ID),
		Value: data,
		Headers: map[string]string{
			"type":         res.Type,
			"provider":     res.Provider,
			"processed_at": res.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
