package models

import (
	"fmt"
	"strings"
)

// MaxBatchURLs is the hard cap on non-blank URLs in one batch.
const MaxBatchURLs = 100

// BatchRequest is the filtered, capped, ordered list of raw URL entries
// for one batch run. Entries keep their original text; only blank entries
// are removed.
type BatchRequest struct {
	URLs []string
}

// NewBatchRequest drops blank entries and enforces MaxBatchURLs.
// A batch over the cap, or with nothing left after filtering, is rejected
// as a whole before any fetch happens.
func NewBatchRequest(raw []string) (*BatchRequest, error) {
	urls := make([]string, 0, len(raw))
	for _, u := range raw {
		if strings.TrimSpace(u) == "" {
			continue
		}
		urls = append(urls, u)
	}

	if len(urls) == 0 {
		return nil, NewValidationError("no URLs provided")
	}
	if len(urls) > MaxBatchURLs {
		return nil, NewValidationError(fmt.Sprintf("maximum %d URLs allowed per batch, got %d", MaxBatchURLs, len(urls)))
	}
	return &BatchRequest{URLs: urls}, nil
}

// Len returns the number of entries in the batch.
func (r *BatchRequest) Len() int {
	return len(r.URLs)
}

// BatchResult holds one ExtractionResult per BatchRequest entry, in input order.
type BatchResult struct {
	ID      string             `json:"id"`
	Summary BatchSummary       `json:"summary"`
	Results []ExtractionResult `json:"results"`
}

// BatchSummary counts outcomes of a finished batch.
type BatchSummary struct {
	Total     int   `json:"total"`
	Succeeded int   `json:"succeeded"`
	Failed    int   `json:"failed"`
	ElapsedMs int64 `json:"elapsed_ms"`
}

// Summarize counts successes and failures in results.
func Summarize(results []ExtractionResult) BatchSummary {
	s := BatchSummary{Total: len(results)}
	for _, r := range results {
		if r.Succeeded() {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

// BatchAnalyzeRequest is the payload for POST /api/v1/batch.
type BatchAnalyzeRequest struct {
	// URLs is the list of pages to analyze. Blank entries are ignored.
	URLs []string `json:"urls" binding:"required"`
}
