// Package spreadsheet reads URL lists from uploaded spreadsheets and writes
// result tables back out.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/use-agent/seometa/models"
	"github.com/use-agent/seometa/report"
)

// ContentTypeXLSX is the MIME type of generated workbooks.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Format identifies a supported spreadsheet encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatFromFilename picks the format from the file extension.
// Anything that is not .csv is read as a workbook.
func FormatFromFilename(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return FormatCSV
	}
	return FormatXLSX
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ReadColumn returns every value below the header named column, in row
// order. Blank values are kept; filtering belongs to the batch request.
//
// Unreadable input, an empty sheet and a missing column are all reported as
// VALIDATION_ERROR.
func ReadColumn(r io.Reader, format Format, column string) ([]string, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	default:
		rows, err = readXLSX(r)
	}
	if err != nil {
		return nil, models.NewAnalyzeError(models.ErrCodeValidation, "invalid spreadsheet file", err)
	}
	if len(rows) == 0 {
		return nil, models.NewValidationError("spreadsheet is empty")
	}

	idx := -1
	for i, h := range rows[0] {
		if strings.TrimSpace(h) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, models.NewValidationError(fmt.Sprintf("spreadsheet must contain a '%s' column", column))
	}

	values := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if idx < len(row) {
			values = append(values, row[idx])
		} else {
			values = append(values, "")
		}
	}
	return values, nil
}

// readXLSX returns the rows of the first worksheet.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

// WriteXLSX writes t as a single-sheet workbook: a bold header row, then one
// row per result. Absent cells are left blank.
func WriteXLSX(w io.Writer, t *report.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("spreadsheet: header style: %w", err)
	}

	for j, col := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return fmt.Errorf("spreadsheet: header cell: %w", err)
		}
		if err := f.SetCellStr(sheet, cell, col); err != nil {
			return fmt.Errorf("spreadsheet: write header: %w", err)
		}
	}
	if len(t.Columns) > 0 {
		if err := f.SetRowStyle(sheet, 1, 1, header); err != nil {
			return fmt.Errorf("spreadsheet: style header: %w", err)
		}
	}

	for i, row := range t.Rows {
		for j, col := range t.Columns {
			v, ok := row[col]
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return fmt.Errorf("spreadsheet: cell: %w", err)
			}
			if err := f.SetCellStr(sheet, cell, v); err != nil {
				return fmt.Errorf("spreadsheet: write row %d: %w", i+1, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("spreadsheet: write workbook: %w", err)
	}
	return nil
}

// WriteCSV writes t as CSV, header first. Absent cells are empty fields.
func WriteCSV(w io.Writer, t *report.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("spreadsheet: write csv: %w", err)
	}
	return nil
}
