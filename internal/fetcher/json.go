package fetcher

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/rotisserie/eris"
)

// readJSONRows emits the rows of a [["a","b"],...] document one at a time.
// Empty input has no rows.
func readJSONRows(r io.Reader, emit func([]string) error) error {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return eris.Wrap(err, "json: read opening token")
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return eris.Errorf("json: expected an array of rows, got %v", tok)
	}

	for n := 1; dec.More(); n++ {
		var row []string
		if err := dec.Decode(&row); err != nil {
			return eris.Wrapf(err, "json: decode row %d", n)
		}
		if err := emit(row); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return eris.Wrap(err, "json: read closing token")
	}
	return nil
}
