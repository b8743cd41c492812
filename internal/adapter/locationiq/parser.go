package locationiq

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/locationiq-geocoder/internal/domain"
	"golang.org/x/net/html/charset"
)

// LocationIQ xmlv1.1 documents.

type searchResults struct {
	XMLName xml.Name `xml:"searchresults"`
	Places  []place  `xml:"place"`
}

// place carries both the result attributes and the address elements.
type place struct {
	resultNode
	addressNode
}

type reverseGeocode struct {
	XMLName      xml.Name     `xml:"reversegeocode"`
	Result       *resultNode  `xml:"result"`
	AddressParts *addressNode `xml:"addressparts"`
}

// resultNode holds the attributes of a <place> or <result> element.
type resultNode struct {
	Lat         string `xml:"lat,attr"`
	Lon         string `xml:"lon,attr"`
	BoundingBox string `xml:"boundingbox,attr"` // south,north,west,east
}

// addressNode holds the address child elements of a <place> or <addressparts> element.
type addressNode struct {
	State       string `xml:"state"`
	County      string `xml:"county"`
	Postcode    string `xml:"postcode"`
	Road        string `xml:"road"`
	Pedestrian  string `xml:"pedestrian"`
	HouseNumber string `xml:"house_number"`
	City        string `xml:"city"`
	Suburb      string `xml:"suburb"`
	Country     string `xml:"country"`
	CountryCode string `xml:"country_code"`
}

var errNoSearchResults = errors.New("missing <searchresults> element")

// parseGeocode converts a search response into addresses in document order.
func parseGeocode(body []byte, requestURL string) (domain.AddressCollection, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &domain.InvalidServerResponseError{URL: requestURL, Err: errNoSearchResults}
	}

	var doc searchResults
	if err := decodeDocument(body, &doc); err != nil {
		return nil, &domain.InvalidServerResponseError{URL: requestURL, Err: err}
	}

	addrs := make(domain.AddressCollection, 0, len(doc.Places))
	for _, pl := range doc.Places {
		addrs = append(addrs, buildAddress(pl.resultNode, pl.addressNode))
	}
	return addrs, nil
}

// parseReverse converts a reverse response into at most one address.
func parseReverse(body []byte) domain.AddressCollection {
	var doc reverseGeocode
	if err := decodeDocument(body, &doc); err != nil {
		return domain.AddressCollection{}
	}
	if hasElement(body, "error") || doc.Result == nil || doc.AddressParts == nil {
		return domain.AddressCollection{}
	}
	return domain.AddressCollection{buildAddress(*doc.Result, *doc.AddressParts)}
}

// buildAddress maps a result node (position attributes) and an address node
// (address elements) onto one Address. Absent or blank values are skipped.
func buildAddress(result resultNode, parts addressNode) domain.Address {
	b := domain.NewAddressBuilder(Name)

	for i, name := range []string{parts.State, parts.County} {
		if v := text(name); v != "" {
			b.AddAdminLevel(i+1, v)
		}
	}

	if postcode := text(parts.Postcode); postcode != "" {
		first, _, _ := strings.Cut(postcode, ";")
		b.SetPostalCode(strings.TrimSpace(first))
	}

	street := text(parts.Road)
	if street == "" {
		street = text(parts.Pedestrian)
	}
	b.SetStreetName(street)
	b.SetStreetNumber(text(parts.HouseNumber))
	b.SetLocality(text(parts.City))
	b.SetSubLocality(text(parts.Suburb))
	b.SetCountry(text(parts.Country))
	b.SetCountryCode(strings.ToUpper(text(parts.CountryCode)))

	if lat, lon, ok := parseCoordinates(result.Lat, result.Lon); ok {
		b.SetCoordinates(lat, lon)
	}
	if bounds, ok := parseBoundingBox(result.BoundingBox); ok {
		b.SetBounds(bounds[0], bounds[1], bounds[2], bounds[3])
	}

	return b.Build()
}

func parseCoordinates(latAttr, lonAttr string) (float64, float64, bool) {
	lat, err := strconv.ParseFloat(text(latAttr), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(text(lonAttr), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// parseBoundingBox splits "south,north,west,east" into four values.
func parseBoundingBox(attr string) ([4]float64, bool) {
	var out [4]float64
	if text(attr) == "" {
		return out, false
	}
	parts := strings.Split(attr, ",")
	if len(parts) != len(out) {
		return out, false
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(text(p), 64)
		if err != nil {
			return out, false
		}
		out[i] = v
	}
	return out, true
}

// decodeDocument decodes the root element into v and requires the rest of
// the body to be empty apart from whitespace, comments and processing
// instructions. Non-UTF-8 documents are decoded by their declared charset.
func decodeDocument(body []byte, v any) error {
	dec := newDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return fmt.Errorf("unexpected element <%s> after document root", t.Name.Local)
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return errors.New("unexpected text after document root")
			}
		}
	}
}

func newDecoder(body []byte) *xml.Decoder {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel
	return dec
}

// hasElement reports whether a start element with the given local name
// appears anywhere in the document.
func hasElement(body []byte, name string) bool {
	dec := newDecoder(body)
	for {
		tok, err := dec.Token()
		if err != nil {
			return false
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == name {
			return true
		}
	}
}

func text(s string) string { return strings.TrimSpace(s) }
