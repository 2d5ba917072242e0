package fetcher

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// readXLSX emits the rows of the first worksheet in the workbook at path.
func readXLSX(path string, emit func([]string) error) error {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return eris.Wrap(err, "xlsx: open workbook")
	}
	if len(wb.Sheets) == 0 {
		return eris.New("xlsx: workbook has no worksheets")
	}

	for _, row := range wb.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = strings.TrimSpace(c.String())
		}
		if err := emit(cells); err != nil {
			return err
		}
	}
	return nil
}
