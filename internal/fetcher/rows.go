package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Format identifies how a tabular file is encoded.
type Format string

const (
	// FormatJSON is a JSON array of string arrays.
	FormatJSON Format = "json"
	// FormatCSV is comma-separated text.
	FormatCSV Format = "csv"
	// FormatPipe is pipe-delimited text, as published by the Census Bureau.
	FormatPipe Format = "pipe"
	// FormatXLSX is the first worksheet of an Excel workbook.
	FormatXLSX Format = "xlsx"
)

// DetectFormat maps a file extension to its Format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".txt", ".psv":
		return FormatPipe, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", eris.Errorf("rows: unsupported file type %q", filepath.Ext(path))
	}
}

// StreamRows streams every row of the tabular file at path, header included.
// Both channels are closed when reading stops; at most one error is sent.
func StreamRows(ctx context.Context, path string) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		defer close(rowCh)

		emit := func(row []string) error {
			select {
			case rowCh <- row:
				return nil
			case <-ctx.Done():
				return eris.Wrap(ctx.Err(), "context cancelled")
			}
		}
		if err := readFile(ctx, path, emit); err != nil {
			errCh <- eris.Wrapf(err, "rows: read %s", path)
		}
	}()

	return rowCh, errCh
}

// ReadRows collects every row of the tabular file at path.
func ReadRows(ctx context.Context, path string) ([][]string, error) {
	rowCh, errCh := StreamRows(ctx, path)

	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return rows, nil
}

func readFile(ctx context.Context, path string, emit func([]string) error) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "context cancelled")
	}

	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	if format == FormatXLSX {
		return readXLSX(path, emit)
	}

	f, err := os.Open(path)
	if err != nil {
		return eris.Wrap(err, "open")
	}
	defer f.Close() //nolint:errcheck // read-only

	switch format {
	case FormatJSON:
		return readJSONRows(f, emit)
	case FormatPipe:
		return readDelimited(f, '|', emit)
	default:
		return readDelimited(f, ',', emit)
	}
}
