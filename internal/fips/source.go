package fips

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// LoadFunc produces the lookup tables.
type LoadFunc func(ctx context.Context) (*Tables, error)

// Source is a load-once handle for the reference tables. Loading starts when
// the Source is created; every caller waits on the same result and a second
// load is never started. The outcome, tables or error, is fixed once loading
// finishes.
type Source struct {
	done        chan struct{}
	tables      *Tables
	fingerprint string
	err         error
}

// NewSource starts load in the background and returns the handle callers wait on.
func NewSource(ctx context.Context, load LoadFunc) *Source {
	s := &Source{done: make(chan struct{})}
	go func() {
		defer close(s.done)
		s.tables, s.err = load(ctx)
		if s.err != nil {
			zap.L().Error("fips reference data failed to load", zap.Error(s.err))
			return
		}
		s.fingerprint = s.tables.Fingerprint()
	}()
	return s
}

// NewStaticSource returns a Source that is already loaded with t.
func NewStaticSource(t *Tables) *Source {
	s := &Source{done: make(chan struct{}), tables: t, fingerprint: t.Fingerprint()}
	close(s.done)
	return s
}

// Wait blocks until loading finishes or ctx is done.
func (s *Source) Wait(ctx context.Context) (*Tables, error) {
	select {
	case <-s.done:
		return s.tables, s.err
	case <-ctx.Done():
		return nil, eris.Wrap(ctx.Err(), "fips: wait for reference data")
	}
}

// Fingerprint identifies the loaded table contents. It is empty until
// loading has succeeded.
func (s *Source) Fingerprint() string {
	if !s.Ready() {
		return ""
	}
	return s.fingerprint
}

// Ready reports whether loading has finished, successfully or not.
func (s *Source) Ready() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Enrich waits for the tables and resolves region and subRegion against them.
// It fails only when the tables could not be loaded.
func (s *Source) Enrich(ctx context.Context, region, subRegion string) (Codes, error) {
	t, err := s.Wait(ctx)
	if err != nil {
		return Codes{}, err
	}
	return t.Resolve(region, subRegion), nil
}
