package fetcher

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// readDelimited emits every record of delim-separated text with its fields
// trimmed. Records may differ in width; the consumer checks arity.
func readDelimited(r io.Reader, delim rune, emit func([]string) error) error {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.FieldsPerRecord = -1

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return eris.Wrap(err, "delimited: read record")
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if err := emit(record); err != nil {
			return err
		}
	}
}
