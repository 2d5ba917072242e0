// Package geocoding geocodes addresses through a location provider and
// annotates every result with state and county FIPS codes.
package geocoding

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fips-geocoder/internal/fips"
	"github.com/sells-group/fips-geocoder/pkg/location"
)

// DefaultMaxSuggestions is used when a caller does not ask for a count.
const DefaultMaxSuggestions = 5

var (
	// ErrNoResults is returned when the provider finds nothing for an address.
	ErrNoResults = eris.New("No results found for the address")
	// ErrPlaceNotFound is returned when a place ID does not resolve.
	ErrPlaceNotFound = eris.New("No place found for the given ID")
)

// Option configures a Service.
type Option func(*Service)

// WithCache stores enriched geocode results in c for ttl. A zero ttl never expires.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithMapConfig sets the document returned by MapConfig.
func WithMapConfig(m MapConfig) Option {
	return func(s *Service) {
		s.mapConfig = m
	}
}

// Service is the geocoding façade.
type Service struct {
	provider  location.Provider
	fips      *fips.Source
	cache     Cache
	cacheTTL  time.Duration
	mapConfig MapConfig
}

// NewService returns a Service that resolves FIPS codes against src.
func NewService(provider location.Provider, src *fips.Source, opts ...Option) *Service {
	s := &Service{
		provider:  provider,
		fips:      src,
		mapConfig: MapConfig{MapName: "GeoMap", Region: "us-west-2"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Geocode returns the best match for address.
func (s *Service) Geocode(ctx context.Context, address string) (*Result, error) {
	tables, err := s.fips.Wait(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "geocoding: geocode")
	}

	key := CacheKey(s.fips.Fingerprint(), address)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			zap.L().Warn("geocoding: cache read failed", zap.Error(err))
		} else if ok {
			zap.L().Debug("geocode cache hit", zap.String("key", key[:12]))
			return cached, nil
		}
	}

	places, err := s.provider.SearchText(ctx, address)
	if err != nil {
		zap.L().Error("geocoding: search failed", zap.String("address", address), zap.Error(err))
		return nil, eris.Wrap(err, "geocoding: geocode")
	}
	if len(places) == 0 {
		return nil, ErrNoResults
	}

	place := places[0]
	result := newResult(&place, tables.Resolve(place.Region, place.SubRegion))

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, &result, s.cacheTTL); err != nil {
			zap.L().Warn("geocoding: cache write failed", zap.Error(err))
		}
	}
	return &result, nil
}

// Suggest returns autocomplete candidates for partial. maxResults <= 0 uses
// DefaultMaxSuggestions.
func (s *Service) Suggest(ctx context.Context, partial string, maxResults int, bias *location.Position) ([]Suggestion, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxSuggestions
	}

	found, err := s.provider.Suggest(ctx, partial, maxResults, bias)
	if err != nil {
		zap.L().Error("geocoding: suggest failed", zap.String("text", partial), zap.Error(err))
		return nil, eris.Wrap(err, "geocoding: suggest")
	}

	out := make([]Suggestion, len(found))
	for i, f := range found {
		out[i] = Suggestion{Text: f.Text, PlaceID: f.PlaceID}
	}
	return out, nil
}

// Place resolves a place ID returned by Suggest.
func (s *Service) Place(ctx context.Context, placeID string) (*PlaceResult, error) {
	tables, err := s.fips.Wait(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "geocoding: place")
	}

	place, err := s.provider.GetPlace(ctx, placeID)
	if eris.Is(err, location.ErrPlaceNotFound) || (err == nil && place == nil) {
		return nil, ErrPlaceNotFound
	}
	if err != nil {
		zap.L().Error("geocoding: get place failed", zap.String("place_id", placeID), zap.Error(err))
		return nil, eris.Wrap(err, "geocoding: place")
	}

	return &PlaceResult{
		Result: newResult(place, tables.Resolve(place.Region, place.SubRegion)),
		Address: Address{
			AddressNumber: place.AddressNumber,
			Street:        place.Street,
		},
	}, nil
}

// Lookup resolves a state and county name directly.
func (s *Service) Lookup(ctx context.Context, state, county string) (fips.Codes, error) {
	return s.fips.Enrich(ctx, state, county)
}

// MapConfig returns the map configuration handed to the browser.
func (s *Service) MapConfig() MapConfig {
	return s.mapConfig
}

// Ready reports whether the reference data has finished loading.
func (s *Service) Ready() bool {
	return s.fips.Ready()
}
