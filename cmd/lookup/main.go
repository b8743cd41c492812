// Command lookup runs a single LocationIQ lookup and prints the addresses.
//
// Usage:
//
//	go run ./cmd/lookup -q "Eiffel Tower, Paris" -limit 3
//	go run ./cmd/lookup -lat 48.8584 -lon 2.2945 -zoom 16 -table
//
// LOCATIONIQ_API_KEY (and optionally LOCATIONIQ_REGION) are read from the
// environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/locationiq-geocoder/internal/adapter/locationiq"
	"github.com/couchcryptid/locationiq-geocoder/internal/adapter/transport"
	"github.com/couchcryptid/locationiq-geocoder/internal/config"
	"github.com/couchcryptid/locationiq-geocoder/internal/domain"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

type options struct {
	text   string
	limit  int
	locale string
	lat    string
	lon    string
	zoom   int
	table  bool
}

func main() {
	var opts options
	flag.StringVar(&opts.text, "q", "", "free-text address to geocode")
	flag.IntVar(&opts.limit, "limit", domain.DefaultLimit, "maximum number of results for -q")
	flag.StringVar(&opts.locale, "locale", "", "preferred response language, e.g. fr or de-CH")
	flag.StringVar(&opts.lat, "lat", "", "latitude for a reverse lookup")
	flag.StringVar(&opts.lon, "lon", "", "longitude for a reverse lookup")
	flag.IntVar(&opts.zoom, "zoom", domain.DefaultZoom, "reverse lookup detail level")
	flag.BoolVar(&opts.table, "table", false, "print a table instead of JSON")
	flag.Parse()

	_ = godotenv.Load()

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "lookup:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// Logs go to stderr so stdout carries only the result.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

	fetcher := transport.New(cfg.LocationIQTimeout, logger)
	provider, err := locationiq.New(fetcher, cfg.LocationIQAPIKey, locationiq.Region(cfg.LocationIQRegion),
		locationiq.WithLogger(logger))
	if err != nil {
		return err
	}

	addrs, err := lookup(ctx, provider, opts)
	if err != nil {
		return err
	}
	if opts.table {
		renderTable(out, addrs)
		return nil
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(addrs)
}

func lookup(ctx context.Context, g domain.Geocoder, opts options) (domain.AddressCollection, error) {
	switch {
	case opts.text != "" && (opts.lat != "" || opts.lon != ""):
		return nil, errors.New("use either -q or -lat/-lon, not both")
	case opts.text != "":
		q, err := domain.NewGeocodeQuery(opts.text, domain.WithLimit(opts.limit), domain.WithGeocodeLocale(opts.locale))
		if err != nil {
			return nil, err
		}
		return g.Geocode(ctx, q)
	case opts.lat != "" && opts.lon != "":
		lat, err := strconv.ParseFloat(opts.lat, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: -lat: %v", domain.ErrInvalidArgument, err)
		}
		lon, err := strconv.ParseFloat(opts.lon, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: -lon: %v", domain.ErrInvalidArgument, err)
		}
		q, err := domain.NewReverseQuery(lat, lon, domain.WithZoom(opts.zoom), domain.WithReverseLocale(opts.locale))
		if err != nil {
			return nil, err
		}
		return g.Reverse(ctx, q)
	default:
		return nil, errors.New("one of -q or -lat/-lon is required")
	}
}

func renderTable(out io.Writer, addrs domain.AddressCollection) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"#", "Street", "Locality", "Postcode", "Region", "Country", "Lat/Lon"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for i, a := range addrs {
		table.Append([]string{
			strconv.Itoa(i + 1),
			strings.TrimSpace(a.StreetNumber + " " + a.StreetName),
			joinNonEmpty(a.Locality, a.SubLocality),
			a.PostalCode,
			joinNonEmpty(a.AdminLevel(1), a.AdminLevel(2)),
			joinNonEmpty(a.Country, a.CountryCode),
			coordinates(a.Coordinates),
		})
	}
	table.SetFooter([]string{"", "", "", "", "", "results", strconv.Itoa(len(addrs))})
	table.Render()
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

func coordinates(c *domain.Coordinates) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("%.5f, %.5f", c.Latitude, c.Longitude)
}

func logLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
