package fips

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_LoadsOnce(t *testing.T) {
	var calls atomic.Int32
	tables := sampleTables(t)
	src := NewSource(context.Background(), func(context.Context) (*Tables, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return tables, nil
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes, err := src.Enrich(context.Background(), "California", "Los Angeles County")
			assert.NoError(t, err)
			assert.Equal(t, Codes{"06", "037"}, codes)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, src.Ready())
}

func TestSource_LoadErrorIsSticky(t *testing.T) {
	var calls atomic.Int32
	src := NewSource(context.Background(), func(context.Context) (*Tables, error) {
		calls.Add(1)
		return nil, errors.New("boom")
	})

	for range 3 {
		_, err := src.Enrich(context.Background(), "California", "Los Angeles County")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestSource_WaitHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	src := NewSource(context.Background(), func(context.Context) (*Tables, error) {
		<-release
		return &Tables{}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := src.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fips: wait for reference data")
	assert.False(t, src.Ready())
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource(sampleTables(t))
	assert.True(t, src.Ready())

	codes, err := src.Enrich(context.Background(), "Ontario", "Toronto")
	require.NoError(t, err)
	assert.Equal(t, Codes{NotAvailable, NotAvailable}, codes)
}

func TestSourceFingerprint(t *testing.T) {
	src := NewStaticSource(sampleTables(t))
	assert.Equal(t, sampleTables(t).Fingerprint(), src.Fingerprint())
	assert.Len(t, src.Fingerprint(), 64)

	block := make(chan struct{})
	pending := NewSource(context.Background(), func(context.Context) (*Tables, error) {
		<-block
		return sampleTables(t), nil
	})
	assert.Empty(t, pending.Fingerprint())
	close(block)
	_, err := pending.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, src.Fingerprint(), pending.Fingerprint())
}

func TestTablesFingerprint_ChangesWithContents(t *testing.T) {
	a := sampleTables(t)
	b := sampleTables(t)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Counties["06"]["ORANGE"] = "059"
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	// Moving a county to another state changes the fingerprint too.
	c := &Tables{States: StateMap{"X": "01"}, Counties: CountyMap{"01": {"A": "001"}}}
	d := &Tables{States: StateMap{"X": "01"}, Counties: CountyMap{"02": {"A": "001"}}}
	assert.NotEqual(t, c.Fingerprint(), d.Fingerprint())
}
