package locationiq

import (
	"testing"

	"github.com/couchcryptid/locationiq-geocoder/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullReverseDoc = `<?xml version="1.0" encoding="UTF-8" ?>
<reversegeocode>
  <result lat="52.5170365" lon="13.3888599" boundingbox="52.3382448,52.6755087,13.0883450,13.7611609">Berlin</result>
  <addressparts>
    <house_number>1</house_number>
    <road>Unter den Linden</road>
    <pedestrian>Ignored Walk</pedestrian>
    <suburb>Mitte</suburb>
    <city>Berlin</city>
    <county>Berlin-Mitte</county>
    <state>Berlin</state>
    <postcode>10117</postcode>
    <country>Deutschland</country>
    <country_code>De</country_code>
  </addressparts>
</reversegeocode>`

func TestParseReverse_AllFieldsRoundTrip(t *testing.T) {
	addrs := parseReverse([]byte(fullReverseDoc))
	require.Len(t, addrs, 1)

	want := domain.Address{
		ProvidedBy:   "locationiq",
		Coordinates:  &domain.Coordinates{Latitude: 52.5170365, Longitude: 13.3888599},
		Bounds:       &domain.Bounds{South: 52.3382448, North: 52.6755087, West: 13.0883450, East: 13.7611609},
		StreetNumber: "1",
		StreetName:   "Unter den Linden",
		PostalCode:   "10117",
		Locality:     "Berlin",
		SubLocality:  "Mitte",
		Country:      "Deutschland",
		CountryCode:  "DE",
		AdminLevels: []domain.AdminLevel{
			{Level: 1, Name: "Berlin"},
			{Level: 2, Name: "Berlin-Mitte"},
		},
	}
	if diff := cmp.Diff(want, addrs[0]); diff != "" {
		t.Fatalf("address mismatch (-want +got):\n%s", diff)
	}
}

func TestParseReverse_MultiplePostcodesKeepsFirst(t *testing.T) {
	doc := `<reversegeocode><result lat="1" lon="2"/><addressparts><postcode>12345;67890</postcode></addressparts></reversegeocode>`

	addrs := parseReverse([]byte(doc))
	require.Len(t, addrs, 1)
	assert.Equal(t, "12345", addrs[0].PostalCode)
}

func TestParseReverse_ErrorAnywhere(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"child of root", `<reversegeocode><error>Unable to geocode</error></reversegeocode>`},
		{"root", `<error><message>Invalid key</message></error>`},
		{"nested", `<reversegeocode><result lat="1" lon="2"/><addressparts><error/></addressparts></reversegeocode>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addrs := parseReverse([]byte(tt.doc))
			assert.NotNil(t, addrs)
			assert.Empty(t, addrs)
		})
	}
}

func TestParseReverse_MissingNodesIsEmpty(t *testing.T) {
	assert.Empty(t, parseReverse([]byte(`<reversegeocode><result lat="1" lon="2"/></reversegeocode>`)))
	assert.Empty(t, parseReverse([]byte(`<reversegeocode><addressparts><city>X</city></addressparts></reversegeocode>`)))
	assert.Empty(t, parseReverse([]byte(`<searchresults/>`)))
	assert.Empty(t, parseReverse(nil))
}

func TestParseGeocode_PlaceIsResultAndAddress(t *testing.T) {
	doc := `<searchresults>
  <place lat="10.5" lon="-20.25" boundingbox="1.0,2.0,3.0,4.0"><city>First</city></place>
  <place lat="11" lon="12"><city>Second</city></place>
  <place><city>Third</city></place>
</searchresults>`

	addrs, err := parseGeocode([]byte(doc), "https://example/search.php")
	require.NoError(t, err)
	require.Len(t, addrs, 3)

	assert.Equal(t, []string{"First", "Second", "Third"}, []string{addrs[0].Locality, addrs[1].Locality, addrs[2].Locality})
	assert.Equal(t, &domain.Coordinates{Latitude: 10.5, Longitude: -20.25}, addrs[0].Coordinates)
	assert.Equal(t, &domain.Bounds{South: 1.0, North: 2.0, West: 3.0, East: 4.0}, addrs[0].Bounds)
	assert.Nil(t, addrs[1].Bounds)
	assert.Nil(t, addrs[2].Coordinates)
}

func TestParseGeocode_NoPlaces(t *testing.T) {
	addrs, err := parseGeocode([]byte(`<searchresults timestamp="x"></searchresults>`), "u")
	require.NoError(t, err)
	assert.NotNil(t, addrs)
	assert.Empty(t, addrs)
}

func TestParseGeocode_InvalidCarriesURL(t *testing.T) {
	_, err := parseGeocode([]byte(`<html/>`), "https://us1.locationiq.com/v1/search.php?q=x&key=secret")

	var invalid *domain.InvalidServerResponseError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "https://us1.locationiq.com/v1/search.php?q=x&key=secret", invalid.URL)
	assert.NotContains(t, err.Error(), "secret")
}

func TestParseGeocode_TrailingContent(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"whitespace", "<searchresults><place><city>X</city></place></searchresults>\n\n", false},
		{"comment", "<searchresults><place><city>X</city></place></searchresults><!-- cached -->", false},
		{"garbage", "<searchresults><place><city>X</city></place></searchresults><<<garbage", true},
		{"concatenated", "<searchresults><place><city>X</city></place></searchresults><searchresults/>", true},
		{"text", "<searchresults><place><city>X</city></place></searchresults>tail", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addrs, err := parseGeocode([]byte(tt.doc), "u")
			if tt.wantErr {
				var invalid *domain.InvalidServerResponseError
				require.ErrorAs(t, err, &invalid)
				return
			}
			require.NoError(t, err)
			assert.Len(t, addrs, 1)
		})
	}
}

func TestParseReverse_TrailingGarbageIsEmpty(t *testing.T) {
	doc := `<reversegeocode><result lat="1" lon="2"/><addressparts><city>X</city></addressparts></reversegeocode><<<`

	assert.Empty(t, parseReverse([]byte(doc)))
}

func TestParse_DeclaredLatin1(t *testing.T) {
	search := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		"<searchresults><place lat=\"45.5\" lon=\"-73.56\"><city>Montr\xe9al</city></place></searchresults>"

	addrs, err := parseGeocode([]byte(search), "u")
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.Equal(t, "Montréal", addrs[0].Locality)

	reverse := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		"<reversegeocode><result lat=\"45.5\" lon=\"-73.56\"/><addressparts><city>Montr\xe9al</city></addressparts></reversegeocode>"

	got := parseReverse([]byte(reverse))
	require.Len(t, got, 1)
	assert.Equal(t, "Montréal", got[0].Locality)
}

func TestBuildAddress_FieldRules(t *testing.T) {
	tests := []struct {
		name   string
		result resultNode
		parts  addressNode
		check  func(t *testing.T, a domain.Address)
	}{
		{
			name:  "pedestrian fallback",
			parts: addressNode{Pedestrian: "Main Walk"},
			check: func(t *testing.T, a domain.Address) { assert.Equal(t, "Main Walk", a.StreetName) },
		},
		{
			name:  "road wins over pedestrian",
			parts: addressNode{Road: "High Street", Pedestrian: "Main Walk"},
			check: func(t *testing.T, a domain.Address) { assert.Equal(t, "High Street", a.StreetName) },
		},
		{
			name:  "blank road falls back",
			parts: addressNode{Road: "  ", Pedestrian: "Main Walk"},
			check: func(t *testing.T, a domain.Address) { assert.Equal(t, "Main Walk", a.StreetName) },
		},
		{
			name:  "county without state",
			parts: addressNode{County: "Travis County"},
			check: func(t *testing.T, a domain.Address) {
				assert.Equal(t, []domain.AdminLevel{{Level: 2, Name: "Travis County"}}, a.AdminLevels)
			},
		},
		{
			name:  "country code uppercased",
			parts: addressNode{CountryCode: "gb"},
			check: func(t *testing.T, a domain.Address) { assert.Equal(t, "GB", a.CountryCode) },
		},
		{
			name:   "lat without lon",
			result: resultNode{Lat: "1.5"},
			check:  func(t *testing.T, a domain.Address) { assert.Nil(t, a.Coordinates) },
		},
		{
			name:   "non-numeric coordinates",
			result: resultNode{Lat: "north", Lon: "2"},
			check:  func(t *testing.T, a domain.Address) { assert.Nil(t, a.Coordinates) },
		},
		{
			name:   "bounding box wrong arity",
			result: resultNode{BoundingBox: "1,2,3"},
			check:  func(t *testing.T, a domain.Address) { assert.Nil(t, a.Bounds) },
		},
		{
			name:   "bounding box with spaces",
			result: resultNode{BoundingBox: " 1.0, 2.0 ,3.0,4.0 "},
			check: func(t *testing.T, a domain.Address) {
				assert.Equal(t, &domain.Bounds{South: 1, North: 2, West: 3, East: 4}, a.Bounds)
			},
		},
		{
			name: "everything missing",
			check: func(t *testing.T, a domain.Address) {
				assert.Equal(t, domain.Address{ProvidedBy: "locationiq"}, a)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, buildAddress(tt.result, tt.parts))
		})
	}
}
