package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("SEOMETA_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	// Optional: only needed when the API runs with SEOMETA_AUTH_ENABLED.
	apiKey := os.Getenv("SEOMETA_API_KEY")

	s := server.NewMCPServer(
		"seometa",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	c := newClient(apiURL, apiKey)

	analyzeURLTool := mcp.NewTool("analyze_url",
		mcp.WithDescription("Fetch a web page and return its SEO metadata: <title>, meta description, og:title, og:description, first <h1> and first paragraph longer than 50 characters."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The page URL. A missing scheme defaults to https://"),
		),
	)
	s.AddTool(analyzeURLTool, handleAnalyzeURL(c))

	analyzeBatchTool := mcp.NewTool("analyze_batch",
		mcp.WithDescription("Extract SEO metadata for up to 100 URLs concurrently. Each URL succeeds or fails on its own; results keep input order."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("List of page URLs"),
			mcp.WithStringItems(),
		),
	)
	s.AddTool(analyzeBatchTool, handleAnalyzeBatch(c))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
