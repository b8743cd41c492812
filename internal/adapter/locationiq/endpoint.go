package locationiq

import (
	"fmt"
	"net/url"

	"github.com/couchcryptid/locationiq-geocoder/internal/domain"
)

const (
	geocodePath = "/search.php?q=%s&format=xmlv1.1&addressdetails=1&normalizecity=1&limit=%d&key=%s"
	reversePath = "/reverse.php?format=xmlv1.1&lat=%f&lon=%f&addressdetails=1&normalizecity=1&zoom=%d&key=%s"
)

// buildGeocodeURL returns the search URL for q. Limit is passed through as-is.
func (p *Provider) buildGeocodeURL(q domain.GeocodeQuery) string {
	u := p.baseURL + fmt.Sprintf(geocodePath, url.QueryEscape(q.Text), q.Limit, url.QueryEscape(p.apiKey))
	return withLocale(u, q.Locale)
}

// buildReverseURL returns the reverse URL for q, with coordinates at six decimals.
func (p *Provider) buildReverseURL(q domain.ReverseQuery) string {
	u := p.baseURL + fmt.Sprintf(reversePath,
		q.Coordinates.Latitude, q.Coordinates.Longitude, q.ZoomOrDefault(), url.QueryEscape(p.apiKey))
	return withLocale(u, q.Locale)
}

func withLocale(u, locale string) string {
	if locale == "" {
		return u
	}
	return u + "&accept-language=" + url.QueryEscape(locale)
}
