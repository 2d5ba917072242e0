package fips

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fips-geocoder/internal/fetcher"
)

var (
	stateHeader  = []string{"State", "FIPS"}
	countyHeader = []string{"County, State", "StateFIPS", "CountyFIPS"}
)

// ConvertCensusStates turns the rows of a Census national state file
// (STATE|STATEFP|STATENS|STATE_NAME) into state dataset rows, header first.
func ConvertCensusStates(rows [][]string) ([][]string, error) {
	if len(rows) == 0 {
		return nil, eris.New("fips: census state file is empty")
	}
	cols, err := columnIndex(rows[0], "STATEFP", "STATE_NAME")
	if err != nil {
		return nil, eris.Wrap(err, "fips: census state header")
	}

	out := [][]string{stateHeader}
	for _, row := range rows[1:] {
		fp, name := cell(row, cols["STATEFP"]), cell(row, cols["STATE_NAME"])
		if fp == "" || name == "" {
			continue
		}
		out = append(out, []string{name, PadStateCode(fp)})
	}
	return out, nil
}

// ConvertCensusCounties turns the rows of a Census national county file
// (STATE|STATEFP|COUNTYFP|COUNTYNS|COUNTYNAME|...) into county dataset rows,
// header first. stateNames maps state FIPS to the name used in the label; the
// postal abbreviation is used when a state is missing from it.
func ConvertCensusCounties(rows [][]string, stateNames map[string]string) ([][]string, error) {
	if len(rows) == 0 {
		return nil, eris.New("fips: census county file is empty")
	}
	cols, err := columnIndex(rows[0], "STATE", "STATEFP", "COUNTYFP", "COUNTYNAME")
	if err != nil {
		return nil, eris.Wrap(err, "fips: census county header")
	}

	out := [][]string{countyHeader}
	for _, row := range rows[1:] {
		stateFP := PadStateCode(cell(row, cols["STATEFP"]))
		countyFP := PadCountyCode(cell(row, cols["COUNTYFP"]))
		name := cell(row, cols["COUNTYNAME"])
		if stateFP == "" || countyFP == "" || name == "" {
			continue
		}
		stateName, ok := stateNames[stateFP]
		if !ok {
			stateName = cell(row, cols["STATE"])
		}
		out = append(out, []string{name + ", " + stateName, stateFP, countyFP})
	}
	return out, nil
}

// StateNames inverts converted state rows into state FIPS → state name.
func StateNames(stateRows [][]string) map[string]string {
	names := make(map[string]string, len(stateRows))
	for _, row := range skipHeader(stateRows) {
		if len(row) == stateColumns {
			names[row[1]] = row[0]
		}
	}
	return names
}

// WriteJSONRows writes rows as a JSON array of string arrays, one row per line.
// The file is replaced atomically.
func WriteJSONRows(path string, rows [][]string) error {
	return writeDatasets(dataset{path, rows})
}

type dataset struct {
	path string
	rows [][]string
}

// writeDatasets stages every dataset in a temp file beside its target and
// renames them into place only once all of them are written, so a failed
// refresh leaves the previous files untouched.
func writeDatasets(sets ...dataset) error {
	staged := make([]string, 0, len(sets))
	cleanup := func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}

	for _, d := range sets {
		tmp, err := stage(d)
		if err != nil {
			cleanup()
			return err
		}
		staged = append(staged, tmp)
	}

	for i, d := range sets {
		if err := os.Rename(staged[i], d.path); err != nil {
			cleanup()
			return eris.Wrapf(err, "fips: replace %s", d.path)
		}
	}
	return nil
}

func stage(d dataset) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i, row := range d.rows {
		b, err := json.Marshal(row)
		if err != nil {
			return "", eris.Wrap(err, "fips: marshal row")
		}
		buf.WriteString("  ")
		buf.Write(b)
		if i < len(d.rows)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("]\n")

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "fips: create output directory")
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(d.path)+".*")
	if err != nil {
		return "", eris.Wrapf(err, "fips: stage %s", d.path)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", eris.Wrapf(err, "fips: write %s", d.path)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", eris.Wrapf(err, "fips: write %s", d.path)
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		_ = os.Remove(f.Name())
		return "", eris.Wrapf(err, "fips: chmod %s", d.path)
	}
	return f.Name(), nil
}

// RefreshOptions names the Census sources and the dataset files to write.
type RefreshOptions struct {
	StateURL   string
	CountyURL  string
	StateFile  string
	CountyFile string
}

// Refresh downloads the Census state and county code files and rewrites the
// reference datasets in the JSON row format.
func Refresh(ctx context.Context, f fetcher.Fetcher, opts RefreshOptions) (Stats, error) {
	tmp, err := os.MkdirTemp("", "fips-refresh-*")
	if err != nil {
		return Stats{}, eris.Wrap(err, "fips: create temp dir")
	}
	defer os.RemoveAll(tmp) //nolint:errcheck

	stateRaw, err := downloadRows(ctx, f, opts.StateURL, filepath.Join(tmp, "states.txt"))
	if err != nil {
		return Stats{}, err
	}
	countyRaw, err := downloadRows(ctx, f, opts.CountyURL, filepath.Join(tmp, "counties.txt"))
	if err != nil {
		return Stats{}, err
	}

	stateRows, err := ConvertCensusStates(stateRaw)
	if err != nil {
		return Stats{}, err
	}
	countyRows, err := ConvertCensusCounties(countyRaw, StateNames(stateRows))
	if err != nil {
		return Stats{}, err
	}

	if err := writeDatasets(dataset{opts.StateFile, stateRows}, dataset{opts.CountyFile, countyRows}); err != nil {
		return Stats{}, err
	}

	stats := Stats{States: len(stateRows) - 1, Counties: len(countyRows) - 1}
	zap.L().Info("fips reference data refreshed",
		zap.String("state_file", opts.StateFile),
		zap.String("county_file", opts.CountyFile),
		zap.Int("states", stats.States),
		zap.Int("counties", stats.Counties),
	)
	return stats, nil
}

func downloadRows(ctx context.Context, f fetcher.Fetcher, url, path string) ([][]string, error) {
	n, err := f.DownloadToFile(ctx, url, path)
	if err != nil {
		return nil, eris.Wrapf(err, "fips: download %s", url)
	}
	zap.L().Debug("fips: downloaded census file", zap.String("url", url), zap.Int64("bytes", n))

	rows, err := fetcher.ReadRows(ctx, path)
	if err != nil {
		return nil, eris.Wrapf(err, "fips: parse %s", url)
	}
	return rows, nil
}

func columnIndex(header []string, names ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		// The Census files start with a UTF-8 byte order mark.
		idx[strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	out := make(map[string]int, len(names))
	for _, n := range names {
		i, ok := idx[n]
		if !ok {
			return nil, eris.Errorf("missing column %s", n)
		}
		out[n] = i
	}
	return out, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
