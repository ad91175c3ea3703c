package batch_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/seometa/batch"
	"github.com/use-agent/seometa/config"
	"github.com/use-agent/seometa/extractor"
	"github.com/use-agent/seometa/mock"
	"github.com/use-agent/seometa/models"
)

// echoFetcher returns a page whose <title> is the requested URL.
func echoFetcher() *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) ([]byte, error) {
			return []byte("<title>" + url + "</title>"), nil
		},
	}
}

func newRunner(f batch.Fetcher, concurrency int, opts ...batch.Option) *batch.Runner {
	return batch.NewRunner(f, extractor.New(), config.BatchConfig{Concurrency: concurrency}, opts...)
}

func mustRequest(t *testing.T, raw ...string) *models.BatchRequest {
	t.Helper()
	req, err := models.NewBatchRequest(raw)
	require.NoError(t, err)
	return req
}

func TestRunner_AnalyzeOne(t *testing.T) {
	t.Parallel()

	t.Run("success uses the normalized url", func(t *testing.T) {
		t.Parallel()

		res := newRunner(echoFetcher(), 1).AnalyzeOne(context.Background(), "  example.com ")
		require.True(t, res.Succeeded())
		assert.Equal(t, "https://example.com", res.URL)
		assert.Equal(t, "https://example.com", res.MetaTitle)
		assert.Empty(t, res.Error)
	})

	t.Run("fetch failure keeps the raw url and no metadata", func(t *testing.T) {
		t.Parallel()

		f := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				return nil, models.NewFetchError("request failed", errors.New("no such host"))
			},
		}
		res := newRunner(f, 1).AnalyzeOne(context.Background(), " bad.invalid")
		assert.False(t, res.Succeeded())
		assert.Equal(t, " bad.invalid", res.URL)
		assert.Equal(t, "request failed: no such host", res.Error)
		assert.Nil(t, res.Metadata)
	})

	t.Run("parse failure is recorded like a fetch failure", func(t *testing.T) {
		t.Parallel()

		e := &mock.Extractor{
			ExtractFn: func(body []byte) (*models.Metadata, error) {
				return nil, models.NewParseError("parse html", errors.New("bad bytes"))
			},
		}
		r := batch.NewRunner(echoFetcher(), e, config.BatchConfig{Concurrency: 1})
		res := r.AnalyzeOne(context.Background(), "example.com")
		assert.False(t, res.Succeeded())
		assert.Equal(t, "example.com", res.URL)
		assert.Contains(t, res.Error, "parse html")
	})

	t.Run("panic becomes an item error", func(t *testing.T) {
		t.Parallel()

		f := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				panic("boom")
			},
		}
		res := newRunner(f, 1).AnalyzeOne(context.Background(), "example.com")
		assert.False(t, res.Succeeded())
		assert.Contains(t, res.Error, "boom")
	})
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("blank entries are filtered and failures are isolated", func(t *testing.T) {
		t.Parallel()

		var fetched sync.Map
		f := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				fetched.Store(url, true)
				if strings.Contains(url, ".invalid") {
					return nil, models.NewFetchError("request failed", errors.New("no such host"))
				}
				return []byte("<title>Example</title>"), nil
			},
		}

		req := mustRequest(t, "example.com", "", "bad-host-xyz123.invalid")
		res := newRunner(f, 4).Run(context.Background(), req)

		require.Len(t, res.Results, 2)
		assert.Equal(t, "https://example.com", res.Results[0].URL)
		assert.Equal(t, "Example", res.Results[0].MetaTitle)

		failed := res.Results[1]
		assert.Equal(t, "bad-host-xyz123.invalid", failed.URL)
		assert.NotEmpty(t, failed.Error)
		assert.Nil(t, failed.Metadata)

		_, ok := fetched.Load("https://bad-host-xyz123.invalid")
		assert.True(t, ok, "failed entry should be fetched with its normalized url")

		assert.Equal(t, 2, res.Summary.Total)
		assert.Equal(t, 1, res.Summary.Succeeded)
		assert.Equal(t, 1, res.Summary.Failed)
		assert.True(t, strings.HasPrefix(res.ID, "batch-"))
	})

	t.Run("order follows input regardless of completion order", func(t *testing.T) {
		t.Parallel()

		f := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				// Earlier entries finish last.
				var n int
				_, _ = fmt.Sscanf(url, "https://site%d.test", &n)
				time.Sleep(time.Duration(20-n) * time.Millisecond)
				return []byte("<title>" + url + "</title>"), nil
			},
		}

		raw := make([]string, 20)
		for i := range raw {
			raw[i] = fmt.Sprintf("site%d.test", i)
		}
		res := newRunner(f, 8).Run(context.Background(), mustRequest(t, raw...))

		require.Len(t, res.Results, len(raw))
		for i, r := range res.Results {
			assert.Equal(t, "https://"+raw[i], r.URL)
			assert.Equal(t, "https://"+raw[i], r.MetaTitle)
		}
	})

	t.Run("in-flight fetches never exceed the concurrency limit", func(t *testing.T) {
		t.Parallel()

		var inFlight, peak atomic.Int32
		f := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				n := inFlight.Add(1)
				defer inFlight.Add(-1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				return []byte("<title>x</title>"), nil
			},
		}

		raw := make([]string, 30)
		for i := range raw {
			raw[i] = fmt.Sprintf("host%d.test", i)
		}
		res := newRunner(f, 3).Run(context.Background(), mustRequest(t, raw...))

		assert.Len(t, res.Results, 30)
		assert.LessOrEqual(t, peak.Load(), int32(3))
		assert.Equal(t, 3, newRunner(f, 3).Concurrency())
	})

	t.Run("a slow item does not fail its neighbours", func(t *testing.T) {
		t.Parallel()

		f := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				if strings.Contains(url, "slow") {
					time.Sleep(30 * time.Millisecond)
					return nil, models.NewFetchError("request timed out after 10s", context.DeadlineExceeded)
				}
				return []byte("<title>ok</title>"), nil
			},
		}

		res := newRunner(f, 2).Run(context.Background(), mustRequest(t, "slow.test", "a.test", "b.test"))
		assert.False(t, res.Results[0].Succeeded())
		assert.True(t, res.Results[1].Succeeded())
		assert.True(t, res.Results[2].Succeeded())
	})

	t.Run("duplicates are processed independently", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		f := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				calls.Add(1)
				return []byte("<title>dup</title>"), nil
			},
		}

		res := newRunner(f, 2).Run(context.Background(), mustRequest(t, "a.test", "a.test"))
		assert.Len(t, res.Results, 2)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("cancelled caller context does not abort the batch", func(t *testing.T) {
		t.Parallel()

		f := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				return []byte("<title>ok</title>"), nil
			},
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res := newRunner(f, 2).Run(ctx, mustRequest(t, "a.test", "b.test"))
		assert.Equal(t, 2, res.Summary.Succeeded)
	})

	t.Run("completion hook receives the result", func(t *testing.T) {
		t.Parallel()

		var got *models.BatchResult
		r := newRunner(echoFetcher(), 2, batch.WithCompletionHook(func(res *models.BatchResult) {
			got = res
		}))

		res := r.Run(context.Background(), mustRequest(t, "a.test"))
		require.NotNil(t, got)
		assert.Same(t, res, got)
	})

	t.Run("no result mixes metadata and error", func(t *testing.T) {
		t.Parallel()

		f := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				if strings.Contains(url, "bad") {
					return nil, errors.New("nope")
				}
				return []byte(`<title>T</title><h1>H</h1>`), nil
			},
		}

		res := newRunner(f, 4).Run(context.Background(), mustRequest(t, "a.test", "bad.test", "c.test", "bad2.test"))
		for _, r := range res.Results {
			if r.Error != "" {
				assert.Nil(t, r.Metadata)
			} else {
				assert.NotNil(t, r.Metadata)
			}
		}
	})
}

func TestNewRunner_ClampsConcurrency(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, newRunner(echoFetcher(), 0).Concurrency())
	assert.Equal(t, 1, newRunner(echoFetcher(), -5).Concurrency())
}

func TestRunner_Analyze_ReturnsTypedError(t *testing.T) {
	t.Parallel()

	f := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) ([]byte, error) {
			return nil, models.NewFetchError("HTTP 404 Not Found for url: "+url, nil)
		},
	}
	res, err := newRunner(f, 1).Analyze(context.Background(), "example.com/missing")
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeFetch, models.ErrorCode(err))
	assert.Equal(t, "example.com/missing", res.URL)
	assert.Equal(t, "HTTP 404 Not Found for url: https://example.com/missing", res.Error)

	ok, err := newRunner(echoFetcher(), 1).Analyze(context.Background(), "go.dev")
	require.NoError(t, err)
	assert.True(t, ok.Succeeded())
}

func TestRunner_Analyze_PanicIsInternal(t *testing.T) {
	t.Parallel()

	e := &mock.Extractor{
		ExtractFn: func(body []byte) (*models.Metadata, error) {
			panic("nil map")
		},
	}
	r := batch.NewRunner(echoFetcher(), e, config.BatchConfig{Concurrency: 1})
	res, err := r.Analyze(context.Background(), "example.com")
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeInternal, models.ErrorCode(err))
	assert.Equal(t, "internal error: nil map", res.Error)
}
