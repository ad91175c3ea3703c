package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/seometa/models"
)

// client talks to a running seometa API.
type client struct {
	apiURL string
	apiKey string
	http   *http.Client
}

func newClient(apiURL, apiKey string) *client {
	return &client{
		apiURL: strings.TrimRight(apiURL, "/"),
		apiKey: apiKey,
		// A full batch of slow pages can take minutes.
		http: &http.Client{Timeout: 10 * time.Minute},
	}
}

// do sends req and returns the body, turning API error bodies into errors.
func (c *client) do(req *http.Request) ([]byte, error) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var e models.ErrorResponse
		if json.Unmarshal(body, &e) == nil && e.Error != nil {
			return nil, fmt.Errorf("[%s] %s", e.Error.Code, e.Error.Message)
		}
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	return body, nil
}

func (c *client) analyze(ctx context.Context, target string) (*models.ExtractionResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.apiURL+"/api/v1/analyze?url="+url.QueryEscape(target), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var res models.ExtractionResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &res, nil
}

func (c *client) batch(ctx context.Context, urls []string) (*models.BatchResult, error) {
	payload, err := json.Marshal(models.BatchAnalyzeRequest{URLs: urls})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/api/v1/batch", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var res models.BatchResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &res, nil
}

func handleAnalyzeURL(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		res, err := c.analyze(ctx, target)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var sb strings.Builder
		writeMetadata(&sb, res)
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleAnalyzeBatch(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		urls, err := request.RequireStringSlice("urls")
		if err != nil {
			return mcp.NewToolResultError("urls is required and must be an array of strings"), nil
		}

		res, err := c.batch(ctx, urls)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Batch %s: %d succeeded, %d failed (%d ms)\n\n",
			res.ID, res.Summary.Succeeded, res.Summary.Failed, res.Summary.ElapsedMs)
		for i := range res.Results {
			r := &res.Results[i]
			if !r.Succeeded() {
				fmt.Fprintf(&sb, "--- [%d] %s FAILED: %s ---\n\n", i+1, r.URL, r.Error)
				continue
			}
			fmt.Fprintf(&sb, "--- [%d] ---\n", i+1)
			writeMetadata(&sb, r)
			sb.WriteString("\n")
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func writeMetadata(sb *strings.Builder, r *models.ExtractionResult) {
	md := r.Metadata
	if md == nil {
		md = &models.Metadata{}
	}
	fmt.Fprintf(sb, "URL: %s\n", r.URL)
	fmt.Fprintf(sb, "Meta title: %s\n", md.MetaTitle)
	fmt.Fprintf(sb, "Meta description: %s\n", md.MetaDescription)
	fmt.Fprintf(sb, "OG title: %s\n", md.OGTitle)
	fmt.Fprintf(sb, "OG description: %s\n", md.OGDescription)
	fmt.Fprintf(sb, "Page title (h1): %s\n", md.PageTitle)
	fmt.Fprintf(sb, "Page description: %s\n", md.PageDescription)
}
