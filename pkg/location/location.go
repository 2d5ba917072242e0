// Package location searches an AWS Location Service place index: free-text
// geocoding, autocomplete suggestions and place lookup by ID.
package location

import (
	"context"

	"github.com/rotisserie/eris"
)

// ErrPlaceNotFound is returned by GetPlace when the index has no place for the ID.
var ErrPlaceNotFound = eris.New("location: place not found")

// Provider is a place index.
type Provider interface {
	// SearchText geocodes free text. Results are ordered by relevance; an
	// empty slice means nothing matched.
	SearchText(ctx context.Context, text string) ([]Place, error)

	// Suggest returns up to maxResults autocomplete candidates for partial
	// text, optionally biased toward a position.
	Suggest(ctx context.Context, text string, maxResults int, bias *Position) ([]Suggestion, error)

	// GetPlace resolves a place ID returned by Suggest.
	GetPlace(ctx context.Context, placeID string) (*Place, error)
}

// Position is a WGS 84 point.
type Position struct {
	Longitude float64
	Latitude  float64
}

// Place holds the address components of a place. Components the index does
// not return are empty.
type Place struct {
	Label         string
	Country       string
	Region        string
	SubRegion     string
	Municipality  string
	Neighborhood  string
	PostalCode    string
	AddressNumber string
	Street        string
	Point         *Position // nil when the index returned no geometry
}

// Suggestion is an autocomplete candidate.
type Suggestion struct {
	Text    string
	PlaceID string
}
