// Package xlsx converts workbooks to labelled rows and writes the stock and
// ledger reports.
package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row maps a header label to the cell value of one data row.
type Row map[string]any

type Sheet struct {
	Name string
	Rows []Row
}

// ReadWorkbook reads every sheet. The first row of a sheet is its header;
// rows with no values are dropped.
func ReadWorkbook(r io.Reader) ([]Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var out []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		out = append(out, Sheet{Name: name, Rows: labelRows(rows)})
	}
	return out, nil
}

func labelRows(rows [][]string) []Row {
	if len(rows) == 0 {
		return nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	var out []Row
	for _, cells := range rows[1:] {
		row := Row{}
		for i, v := range cells {
			if i >= len(header) || header[i] == "" || strings.TrimSpace(v) == "" {
				continue
			}
			row[header[i]] = v
		}
		if len(row) > 0 {
			out = append(out, row)
		}
	}
	return out
}
