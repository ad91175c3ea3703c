// Package report shapes batch results into a table for export.
package report

import "github.com/use-agent/seometa/models"

// Row maps column name to cell value. A missing key is an absent cell,
// which exporters leave blank rather than zero-filling.
type Row map[string]string

// Table is the tabular form of a batch result: one row per result, in input
// order, over the union of columns any row produced.
type Table struct {
	Columns []string
	Rows    []Row
}

// Assemble converts results into a Table.
//
// Columns appear in the canonical models.Columns order; a column no row
// produced is left out, so an all-success batch has no error column and an
// all-failure batch has only url and error.
func Assemble(results []models.ExtractionResult) *Table {
	t := &Table{Rows: make([]Row, 0, len(results))}
	present := make(map[string]bool, len(models.Columns))

	for _, r := range results {
		row := Row(r.Fields())
		for col := range row {
			present[col] = true
		}
		t.Rows = append(t.Rows, row)
	}

	for _, col := range models.Columns {
		if present[col] {
			t.Columns = append(t.Columns, col)
		}
	}
	return t
}

// Value returns the cell at row i, column col, and whether it is present.
func (t *Table) Value(i int, col string) (string, bool) {
	if i < 0 || i >= len(t.Rows) {
		return "", false
	}
	v, ok := t.Rows[i][col]
	return v, ok
}

// Records returns the table as string slices, header first. Absent cells
// become empty strings.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), t.Columns...))
	for _, row := range t.Rows {
		rec := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			rec[j] = row[col]
		}
		out = append(out, rec)
	}
	return out
}
