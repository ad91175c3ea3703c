package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/seometa/models"
)

func callTool(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analyze", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("url") == "bad.invalid" {
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: &models.ErrorDetail{
				Code: models.ErrCodeFetch, Message: "request failed: no such host",
			}})
			return
		}
		_ = json.NewEncoder(w).Encode(models.NewSuccess("https://example.com", models.Metadata{
			MetaTitle: "Example Domain",
			PageTitle: "Welcome",
		}))
	})
	mux.HandleFunc("POST /api/v1/batch", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get("X-API-Key"))
		var req models.BatchAnalyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		results := make([]models.ExtractionResult, 0, len(req.URLs))
		for _, u := range req.URLs {
			if u == "bad.invalid" {
				results = append(results, models.NewFailure(u, assert.AnError))
				continue
			}
			results = append(results, models.NewSuccess("https://"+u, models.Metadata{MetaTitle: u}))
		}
		_ = json.NewEncoder(w).Encode(models.BatchResult{
			ID:      "batch-1",
			Summary: models.Summarize(results),
			Results: results,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAnalyzeURLTool(t *testing.T) {
	t.Parallel()

	h := handleAnalyzeURL(newClient(fakeAPI(t).URL, ""))

	text, isErr := callTool(t, h, map[string]any{"url": "example.com"})
	assert.False(t, isErr)
	assert.Contains(t, text, "Meta title: Example Domain")
	assert.Contains(t, text, "Page title (h1): Welcome")

	text, isErr = callTool(t, h, map[string]any{"url": "bad.invalid"})
	assert.True(t, isErr)
	assert.Equal(t, "[FETCH_FAILED] request failed: no such host", text)

	_, isErr = callTool(t, h, map[string]any{})
	assert.True(t, isErr)
}

func TestAnalyzeBatchTool(t *testing.T) {
	t.Parallel()

	h := handleAnalyzeBatch(newClient(fakeAPI(t).URL+"/", "k"))

	text, isErr := callTool(t, h, map[string]any{"urls": []any{"a.com", "bad.invalid"}})
	assert.False(t, isErr)
	assert.Contains(t, text, "Batch batch-1: 1 succeeded, 1 failed")
	assert.Contains(t, text, "Meta title: a.com")
	assert.Contains(t, text, "[2] bad.invalid FAILED")

	_, isErr = callTool(t, h, map[string]any{"urls": "not-a-list"})
	assert.True(t, isErr)
}
