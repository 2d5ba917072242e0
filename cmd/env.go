package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/fips-geocoder/internal/config"
	"github.com/sells-group/fips-geocoder/internal/fips"
	"github.com/sells-group/fips-geocoder/internal/geocoding"
	"github.com/sells-group/fips-geocoder/internal/resilience"
	"github.com/sells-group/fips-geocoder/pkg/location"
)

// newProvider builds the upstream place index client. Tests replace it.
var newProvider = func(ctx context.Context, c *config.Config) (location.Provider, error) {
	api, err := location.NewAPI(ctx, c.Location.Region)
	if err != nil {
		return nil, err
	}
	return location.NewClient(api, c.Location.IndexName,
		location.WithRateLimit(c.Location.RateLimit),
		location.WithFilterCountries(c.Location.FilterCountries...),
		location.WithTimeout(time.Duration(c.Location.TimeoutSecs)*time.Second),
		location.WithPolicy(resilience.NewPolicy("location", c.Resilience)),
	), nil
}

// serviceEnv holds the wired geocoding service and the resources to release.
type serviceEnv struct {
	Service *geocoding.Service
	closers []func()
}

// Close releases everything opened by initService.
func (e *serviceEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// newFIPSSource starts loading the reference datasets named in c.
func newFIPSSource(ctx context.Context, c *config.Config) *fips.Source {
	loader := fips.NewLoader(c.FIPS.StateFile, c.FIPS.CountyFile)
	return fips.NewSource(ctx, loader.Load)
}

// initService validates the config for mode and wires the geocoding service.
func initService(ctx context.Context, mode string) (*serviceEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	env := &serviceEnv{}
	src := newFIPSSource(ctx, cfg)

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []geocoding.Option{
		geocoding.WithMapConfig(geocoding.MapConfig{
			MapName:        cfg.Map.Name,
			Region:         cfg.Map.Region,
			IdentityPoolID: cfg.Map.IdentityPoolID,
		}),
	}

	cache, closeCache, err := geocoding.OpenCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		env.closers = append(env.closers, closeCache)
		opts = append(opts, geocoding.WithCache(cache, time.Duration(cfg.Cache.TTLHours)*time.Hour))
		zap.L().Info("geocode cache enabled", zap.String("driver", cfg.Cache.Driver))
	}

	env.Service = geocoding.NewService(provider, src, opts...)
	return env, nil
}
