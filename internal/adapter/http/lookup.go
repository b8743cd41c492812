package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/couchcryptid/locationiq-geocoder/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

type lookupResponse struct {
	Provider  string                   `json:"provider"`
	Addresses domain.AddressCollection `json:"addresses"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	opts := []domain.GeocodeOption{domain.WithGeocodeLocale(params.Get("locale"))}
	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			s.writeError(w, r, fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidArgument))
			return
		}
		opts = append(opts, domain.WithLimit(limit))
	}

	q, err := domain.NewGeocodeQuery(params.Get("q"), opts...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	addrs, err := s.geocoder.Geocode(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeAddresses(w, addrs)
}

func (s *Server) handleReverse(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	lat, err := requiredFloat(params, "lat")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lon, err := requiredFloat(params, "lon")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := []domain.ReverseOption{domain.WithReverseLocale(params.Get("locale"))}
	if raw := params.Get("zoom"); raw != "" {
		zoom, err := strconv.Atoi(raw)
		if err != nil || zoom < 0 {
			s.writeError(w, r, fmt.Errorf("%w: zoom must be a non-negative integer", domain.ErrInvalidArgument))
			return
		}
		opts = append(opts, domain.WithZoom(zoom))
	}

	q, err := domain.NewReverseQuery(lat, lon, opts...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	addrs, err := s.geocoder.Reverse(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeAddresses(w, addrs)
}

func (s *Server) writeAddresses(w http.ResponseWriter, addrs domain.AddressCollection) {
	if addrs == nil {
		addrs = domain.AddressCollection{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, lookupResponse{Provider: s.geocoder.Name(), Addresses: addrs})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	id := requestID(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("lookup failed", "path", r.URL.Path, "request_id", id, "status", status, "error", err)
	} else {
		s.logger.Info("lookup rejected", "path", r.URL.Path, "request_id", id, "status", status, "error", err)
	}
	sharedobs.WriteJSON(w, status, errorResponse{Error: err.Error(), RequestID: id})
}

// statusFor maps lookup errors onto HTTP statuses. Rejected credentials and
// malformed provider responses are upstream faults, so they surface as 502.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func requiredFloat(params url.Values, name string) (float64, error) {
	raw := params.Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", domain.ErrInvalidArgument, name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidArgument, name)
	}
	return v, nil
}
