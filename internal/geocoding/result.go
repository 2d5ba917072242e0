package geocoding

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fips-geocoder/internal/fips"
	"github.com/sells-group/fips-geocoder/pkg/location"
)

// Coordinates is a [longitude, latitude] pair. It serializes as "N/A" when
// the provider returned no geometry.
type Coordinates []float64

// MarshalJSON implements json.Marshaler.
func (c Coordinates) MarshalJSON() ([]byte, error) {
	if len(c) != 2 {
		return json.Marshal(fips.NotAvailable)
	}
	return json.Marshal([]float64(c))
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Coordinates) UnmarshalJSON(b []byte) error {
	var s string
	if json.Unmarshal(b, &s) == nil {
		if s != fips.NotAvailable {
			return eris.Errorf("geocoding: unexpected coordinates %q", s)
		}
		*c = nil
		return nil
	}
	var pair []float64
	if err := json.Unmarshal(b, &pair); err != nil {
		return eris.Wrap(err, "geocoding: decode coordinates")
	}
	*c = pair
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c Coordinates) MarshalYAML() (any, error) {
	if len(c) != 2 {
		return fips.NotAvailable, nil
	}
	return []float64(c), nil
}

// Result is an enriched geocoding result. Text fields the provider omitted
// are "N/A".
type Result struct {
	Label        string      `json:"label" yaml:"label"`
	Country      string      `json:"country" yaml:"country"`
	Region       string      `json:"region" yaml:"region"`
	SubRegion    string      `json:"subRegion" yaml:"subRegion"`
	Municipality string      `json:"municipality" yaml:"municipality"`
	Neighborhood string      `json:"neighborhood" yaml:"neighborhood"`
	PostalCode   string      `json:"postalCode" yaml:"postalCode"`
	Coordinates  Coordinates `json:"coordinates" yaml:"coordinates"`
	StateFIPS    string      `json:"stateFips" yaml:"stateFips"`
	CountyFIPS   string      `json:"countyFips" yaml:"countyFips"`
}

// Address holds the street-level parts of a place. Missing parts are empty.
type Address struct {
	AddressNumber string `json:"AddressNumber" yaml:"AddressNumber"`
	Street        string `json:"Street" yaml:"Street"`
}

// PlaceResult is a Result for a place looked up by ID.
type PlaceResult struct {
	Result  `yaml:",inline"`
	Address Address `json:"address" yaml:"address"`
}

// Suggestion is an autocomplete candidate.
type Suggestion struct {
	Text    string `json:"text" yaml:"text"`
	PlaceID string `json:"placeId" yaml:"placeId"`
}

// MapConfig tells the browser which map resource to render.
type MapConfig struct {
	MapName        string `json:"mapName" yaml:"mapName"`
	Region         string `json:"region" yaml:"region"`
	IdentityPoolID string `json:"identityPoolId" yaml:"identityPoolId"`
}

func newResult(p *location.Place, codes fips.Codes) Result {
	r := Result{
		Label:        orNA(p.Label),
		Country:      orNA(p.Country),
		Region:       orNA(p.Region),
		SubRegion:    orNA(p.SubRegion),
		Municipality: orNA(p.Municipality),
		Neighborhood: orNA(p.Neighborhood),
		PostalCode:   orNA(p.PostalCode),
		StateFIPS:    codes.StateFIPS,
		CountyFIPS:   codes.CountyFIPS,
	}
	if p.Point != nil {
		r.Coordinates = Coordinates{p.Point.Longitude, p.Point.Latitude}
	}
	return r
}

func orNA(s string) string {
	if s == "" {
		return fips.NotAvailable
	}
	return s
}
