package fips

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/fips-geocoder/internal/fetcher"
)

const (
	stateColumns  = 2 // name, fips
	countyColumns = 3 // "County, State", state fips, county fips
)

// Loader reads the state and county reference datasets from disk.
type Loader struct {
	StateFile  string
	CountyFile string
}

// NewLoader returns a Loader for the given dataset paths.
func NewLoader(stateFile, countyFile string) *Loader {
	return &Loader{StateFile: stateFile, CountyFile: countyFile}
}

// Load reads both datasets concurrently and builds the lookup tables.
func (l *Loader) Load(ctx context.Context) (*Tables, error) {
	start := time.Now()

	var states StateMap
	var counties CountyMap

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, pad, err := readDataset(gctx, l.StateFile)
		if err != nil {
			return eris.Wrap(err, "fips: load state dataset")
		}
		if states, err = BuildStateMap(rows, pad); err != nil {
			return eris.Wrapf(err, "fips: %s", l.StateFile)
		}
		return nil
	})
	g.Go(func() error {
		rows, pad, err := readDataset(gctx, l.CountyFile)
		if err != nil {
			return eris.Wrap(err, "fips: load county dataset")
		}
		if counties, err = BuildCountyMap(rows, pad); err != nil {
			return eris.Wrapf(err, "fips: %s", l.CountyFile)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t := &Tables{States: states, Counties: counties}
	stats := t.Stats()
	zap.L().Info("fips reference data loaded",
		zap.String("state_file", l.StateFile),
		zap.String("county_file", l.CountyFile),
		zap.Int("states", stats.States),
		zap.Int("counties", stats.Counties),
		zap.Duration("elapsed", time.Since(start)),
	)
	return t, nil
}

// readDataset returns every row of path and whether its codes need padding.
// Codes from CSV and XLSX are padded; JSON codes are kept verbatim.
func readDataset(ctx context.Context, path string) ([][]string, bool, error) {
	format, err := fetcher.DetectFormat(path)
	if err != nil {
		return nil, false, err
	}
	rows, err := fetcher.ReadRows(ctx, path)
	if err != nil {
		return nil, false, err
	}
	return rows, format != fetcher.FormatJSON, nil
}

// BuildStateMap builds a StateMap from dataset rows. Row 0 is a header and is
// skipped without inspection. Later rows overwrite earlier rows with the same key.
func BuildStateMap(rows [][]string, padCodes bool) (StateMap, error) {
	states := make(StateMap)
	for i, row := range skipHeader(rows) {
		if len(row) != stateColumns {
			return nil, eris.Errorf("fips: state row %d: expected %d columns, got %d", i+1, stateColumns, len(row))
		}
		name, code := row[0], row[1]
		if padCodes {
			code = PadStateCode(code)
		}
		states[NormalizeState(name)] = code
	}
	return states, nil
}

// BuildCountyMap builds a CountyMap from dataset rows. Row 0 is a header and is
// skipped without inspection. Rows without a county segment are skipped; later
// rows overwrite earlier rows with the same state and county key.
func BuildCountyMap(rows [][]string, padCodes bool) (CountyMap, error) {
	counties := make(CountyMap)
	for i, row := range skipHeader(rows) {
		if len(row) != countyColumns {
			return nil, eris.Errorf("fips: county row %d: expected %d columns, got %d", i+1, countyColumns, len(row))
		}
		county, ok := countyFromFullName(row[0])
		if !ok {
			zap.L().Debug("fips: skipping county row without a name", zap.Int("row", i+1))
			continue
		}
		stateCode, countyCode := row[1], row[2]
		if padCodes {
			stateCode = PadStateCode(stateCode)
			countyCode = PadCountyCode(countyCode)
		}
		inner, ok := counties[stateCode]
		if !ok {
			inner = make(map[string]string)
			counties[stateCode] = inner
		}
		inner[county] = countyCode
	}
	return counties, nil
}

func skipHeader(rows [][]string) [][]string {
	if len(rows) == 0 {
		return nil
	}
	return rows[1:]
}
