// Package mock provides function-field test doubles for the batch
// orchestrator's collaborators.
package mock

import (
	"context"

	"github.com/use-agent/seometa/batch"
	"github.com/use-agent/seometa/models"
)

var (
	_ batch.Fetcher   = (*Fetcher)(nil)
	_ batch.Extractor = (*Extractor)(nil)
)

// Fetcher is a mock implementation of batch.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) ([]byte, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.FetchFn(ctx, url)
}

// Extractor is a mock implementation of batch.Extractor.
type Extractor struct {
	ExtractFn func(body []byte) (*models.Metadata, error)
}

func (e *Extractor) Extract(body []byte) (*models.Metadata, error) {
	return e.ExtractFn(body)
}
