package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/locationiq-geocoder/internal/domain"
	"github.com/google/uuid"
)

// LookupTransformer implements Transformer by running each lookup request
// against a geocoder.
type LookupTransformer struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewTransformer creates a LookupTransformer.
func NewTransformer(geocoder domain.Geocoder, logger *slog.Logger) *LookupTransformer {
	return &LookupTransformer{
		geocoder: geocoder,
		logger:   logger,
	}
}

// Transform parses a request and performs the lookup. Malformed requests are
// returned as errors so the pipeline skips them; lookup failures are recorded
// in the result instead.
func (t *LookupTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	req, err := domain.ParseLookupRequest(raw.Value)
	if err != nil {
		return domain.OutputEvent{}, err
	}
	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	addrs, lookupErr := t.lookup(ctx, req)
	if lookupErr != nil {
		t.logger.Warn("lookup failed", "id", req.ID, "type", req.Type, "error", lookupErr)
	}

	return domain.SerializeLookupResult(domain.NewLookupResult(req, t.geocoder.Name(), addrs, lookupErr))
}

func (t *LookupTransformer) lookup(ctx context.Context, req domain.LookupRequest) (domain.AddressCollection, error) {
	switch req.Type {
	case domain.LookupGeocode:
		q, err := req.GeocodeQuery()
		if err != nil {
			return nil, err
		}
		return t.geocoder.Geocode(ctx, q)
	case domain.LookupReverse:
		q, err := req.ReverseQuery()
		if err != nil {
			return nil, err
		}
		return t.geocoder.Reverse(ctx, q)
	default:
		return nil, fmt.Errorf("%w: unknown lookup type %q", domain.ErrInvalidArgument, req.Type)
	}
}
