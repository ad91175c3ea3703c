package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/seometa/batch"
	"github.com/use-agent/seometa/config"
	"github.com/use-agent/seometa/models"
	"github.com/use-agent/seometa/report"
	"github.com/use-agent/seometa/spreadsheet"
	"github.com/use-agent/seometa/storage"
)

// Response headers set on a bulk download.
const (
	HeaderBatchID        = "X-Batch-Id"
	HeaderBatchSucceeded = "X-Batch-Succeeded"
	HeaderBatchFailed    = "X-Batch-Failed"
)

// Bulk returns a handler for POST /api/v1/bulk.
//
// Flow:
//  1. Read the multipart "file" field (.xlsx or .csv) under the upload cap.
//  2. Stage it in a private workspace and read the URL column.
//  3. Run the batch and assemble the result table.
//  4. Write results_<uuid>.xlsx into the workspace and send it as an attachment.
//
// The workspace is removed when the handler returns, whatever the outcome.
func Bulk(runner *batch.Runner, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.Upload.MaxBytes)

		fh, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondError(c, models.NewValidationError(fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)))
				return
			}
			respondError(c, models.NewValidationError("no file uploaded"))
			return
		}
		if fh.Filename == "" {
			respondError(c, models.NewValidationError("no file selected"))
			return
		}
		format := spreadsheet.FormatFromFilename(fh.Filename)

		ws, err := storage.NewWorkspace(cfg.Upload.Dir)
		if err != nil {
			respondError(c, err)
			return
		}
		defer func() {
			if err := ws.Close(); err != nil {
				slog.Warn("bulk workspace cleanup failed", "dir", ws.Path(), "error", err)
			}
		}()

		src, err := fh.Open()
		if err != nil {
			respondError(c, models.NewAnalyzeError(models.ErrCodeValidation, "invalid spreadsheet file", err))
			return
		}
		staged, err := ws.Stage(src, format.Extension())
		_ = src.Close()
		if err != nil {
			respondError(c, err)
			return
		}

		values, err := readStaged(staged, format, cfg.Batch.URLColumn)
		if err != nil {
			respondError(c, err)
			return
		}

		req, err := models.NewBatchRequest(values)
		if err != nil {
			respondError(c, err)
			return
		}

		res := runner.Run(c.Request.Context(), req)

		out, err := ws.Create("results", ".xlsx")
		if err != nil {
			respondError(c, err)
			return
		}
		werr := spreadsheet.WriteXLSX(out, report.Assemble(res.Results))
		if cerr := out.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			respondError(c, werr)
			return
		}

		c.Header(HeaderBatchID, res.ID)
		c.Header(HeaderBatchSucceeded, strconv.Itoa(res.Summary.Succeeded))
		c.Header(HeaderBatchFailed, strconv.Itoa(res.Summary.Failed))
		c.Header("Content-Type", spreadsheet.ContentTypeXLSX)
		c.FileAttachment(out.Name(), filepath.Base(out.Name()))
	}
}

func readStaged(path string, format spreadsheet.Format, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open staged upload: %w", err)
	}
	defer f.Close()
	return spreadsheet.ReadColumn(f, format, column)
}
