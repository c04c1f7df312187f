package fetcher

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ParseRecords parses an in-memory XLSX payload into header-keyed row
// records. The first worksheet is used; its first row supplies the column
// names. Cells beyond the header width are dropped, short rows simply
// leave their trailing columns unset.
func ParseRecords(data []byte) ([]map[string]string, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open")
	}

	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: file has no sheets")
	}
	sheet := f.Sheets[0]

	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	header := rowToStrings(sheet.Rows[0])
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	var records []map[string]string
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		rec := make(map[string]string, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(cells) {
				rec[name] = cells[i]
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
