package spreadsheet_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/use-agent/seometa/models"
	"github.com/use-agent/seometa/report"
	"github.com/use-agent/seometa/spreadsheet"
)

// workbook builds an in-memory .xlsx whose first sheet holds rows.
func workbook(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, v := range row {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellStr(sheet, cell, v))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestReadColumn_XLSX(t *testing.T) {
	t.Parallel()

	t.Run("reads the url column in row order", func(t *testing.T) {
		t.Parallel()

		data := workbook(t, [][]string{
			{"name", "url"},
			{"a", "example.com"},
			{"b", ""},
			{"c", "https://go.dev"},
		})

		got, err := spreadsheet.ReadColumn(bytes.NewReader(data), spreadsheet.FormatXLSX, "url")
		require.NoError(t, err)
		assert.Equal(t, []string{"example.com", "", "https://go.dev"}, got)
	})

	t.Run("missing column is a validation error", func(t *testing.T) {
		t.Parallel()

		data := workbook(t, [][]string{{"link"}, {"example.com"}})

		_, err := spreadsheet.ReadColumn(bytes.NewReader(data), spreadsheet.FormatXLSX, "url")
		require.Error(t, err)
		assert.True(t, models.IsValidationError(err))
		assert.Contains(t, err.Error(), "'url' column")
	})

	t.Run("garbage bytes are a validation error", func(t *testing.T) {
		t.Parallel()

		_, err := spreadsheet.ReadColumn(strings.NewReader("not a workbook"), spreadsheet.FormatXLSX, "url")
		require.Error(t, err)
		assert.True(t, models.IsValidationError(err))
		assert.Contains(t, err.Error(), "invalid spreadsheet file")
	})

	t.Run("empty sheet is a validation error", func(t *testing.T) {
		t.Parallel()

		data := workbook(t, nil)
		_, err := spreadsheet.ReadColumn(bytes.NewReader(data), spreadsheet.FormatXLSX, "url")
		require.Error(t, err)
		assert.True(t, models.IsValidationError(err))
	})
}

func TestReadColumn_CSV(t *testing.T) {
	t.Parallel()

	in := "\ufeffurl,notes\nexample.com,first\n,blank\nhttp://a.test\n"
	got, err := spreadsheet.ReadColumn(strings.NewReader(in), spreadsheet.FormatCSV, "url")
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com", "", "http://a.test"}, got)
}

func TestFormatFromFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, spreadsheet.FormatCSV, spreadsheet.FormatFromFilename("urls.CSV"))
	assert.Equal(t, spreadsheet.FormatXLSX, spreadsheet.FormatFromFilename("urls.xlsx"))
	assert.Equal(t, spreadsheet.FormatXLSX, spreadsheet.FormatFromFilename("urls"))
	assert.Equal(t, ".xlsx", spreadsheet.FormatXLSX.Extension())
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	tbl := report.Assemble([]models.ExtractionResult{
		models.NewSuccess("https://a.com", models.Metadata{MetaTitle: "A"}),
		models.NewFailure("bad.invalid", errors.New("no such host")),
	})

	var buf bytes.Buffer
	require.NoError(t, spreadsheet.WriteXLSX(&buf, tbl))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, models.Columns, rows[0])
	assert.Equal(t, "https://a.com", rows[1][0])
	assert.Equal(t, "A", rows[1][1])

	assert.Equal(t, "bad.invalid", rows[2][0])
	errCol := len(models.Columns) - 1
	require.Len(t, rows[2], errCol+1)
	assert.Equal(t, "no such host", rows[2][errCol])

	// Metadata cells of the error row were never written.
	cell, err := excelize.CoordinatesToCellName(2, 3)
	require.NoError(t, err)
	v, err := f.GetCellValue(f.GetSheetName(0), cell)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	tbl := report.Assemble([]models.ExtractionResult{
		models.NewFailure("a.com", errors.New("x")),
	})

	var buf bytes.Buffer
	require.NoError(t, spreadsheet.WriteCSV(&buf, tbl))
	assert.Equal(t, "url,error\na.com,x\n", buf.String())
}
