package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/use-agent/seometa/models"
)

var (
	apiURL = flag.String("api-url", "http://localhost:8080", "seometa API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Number of runs per URL for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Sample pages covering a few site shapes.
var testURLs = []struct {
	Label string
	URL   string
}{
	{"Static", "https://example.com"},
	{"Blog", "https://go.dev/blog/go1.21"},
	{"Docs", "https://go.dev/doc/effective_go"},
	{"News", "https://www.bbc.com/news"},
	{"Complex", "https://github.com/gin-gonic/gin"},
}

type runResult struct {
	Run         int    `json:"run"`
	LatencyMs   int64  `json:"latency_ms"`
	HTTPStatus  int    `json:"http_status"`
	FieldsFound int    `json:"fields_found"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

type urlAverages struct {
	LatencyMs   float64 `json:"latency_ms"`
	FieldsFound float64 `json:"fields_found"`
}

type urlResult struct {
	URL      string       `json:"url"`
	Label    string       `json:"label"`
	Runs     []runResult  `json:"runs"`
	Averages *urlAverages `json:"averages,omitempty"`
}

type batchRun struct {
	LatencyMs int64               `json:"latency_ms"`
	Summary   models.BatchSummary `json:"summary"`
	Error     string              `json:"error,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
	Batch      batchRun    `json:"batch"`
}

var client = &http.Client{Timeout: 90 * time.Second}

func main() {
	flag.Parse()

	fmt.Println("=== seometa Benchmark Suite ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Runs/URL:  %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure seometa is running (seometa serve)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		RunsPerURL: *runs,
	}

	for _, t := range testURLs {
		fmt.Printf("Benchmarking [%s] %s ...\n", t.Label, t.URL)
		ur := urlResult{URL: t.URL, Label: t.Label}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkURL(t.URL, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %d/6 fields\n", rr.LatencyMs, rr.FieldsFound)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}

		ur.Averages = computeAverages(ur.Runs)
		report.Results = append(report.Results, ur)
		fmt.Println()
	}

	fmt.Println("Benchmarking batch of all sample URLs ...")
	report.Batch = benchmarkBatch()
	if report.Batch.Error != "" {
		fmt.Printf("  FAILED: %s\n\n", report.Batch.Error)
	} else {
		fmt.Printf("  OK  %dms  %d/%d succeeded\n\n", report.Batch.LatencyMs, report.Batch.Summary.Succeeded, report.Batch.Summary.Total)
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func authorize(req *http.Request) {
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}
}

func benchmarkURL(target string, run int) runResult {
	rr := runResult{Run: run}

	req, err := http.NewRequest(http.MethodGet, *apiURL+"/api/v1/analyze?url="+url.QueryEscape(target), nil)
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	authorize(req)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()
	rr.HTTPStatus = resp.StatusCode

	if resp.StatusCode != http.StatusOK {
		var e models.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != nil {
			rr.Error = e.Error.Message
		} else {
			rr.Error = resp.Status
		}
		return rr
	}

	var res models.ExtractionResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}
	rr.LatencyMs = time.Since(start).Milliseconds()
	rr.Success = res.Succeeded()
	rr.FieldsFound = countFields(res)
	return rr
}

func benchmarkBatch() batchRun {
	var br batchRun

	urls := make([]string, 0, len(testURLs))
	for _, t := range testURLs {
		urls = append(urls, t.URL)
	}
	body, err := json.Marshal(models.BatchAnalyzeRequest{URLs: urls})
	if err != nil {
		br.Error = fmt.Sprintf("marshal error: %v", err)
		return br
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL+"/api/v1/batch", bytes.NewReader(body))
	if err != nil {
		br.Error = fmt.Sprintf("request error: %v", err)
		return br
	}
	req.Header.Set("Content-Type", "application/json")
	authorize(req)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		br.Error = fmt.Sprintf("request failed: %v", err)
		return br
	}
	defer resp.Body.Close()

	var res models.BatchResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		br.Error = fmt.Sprintf("decode error: %v", err)
		return br
	}
	br.LatencyMs = time.Since(start).Milliseconds()
	br.Summary = res.Summary
	return br
}

// countFields reports how many of the six metadata fields are non-empty.
func countFields(res models.ExtractionResult) int {
	n := 0
	for col, v := range res.Fields() {
		if col != models.ColumnURL && col != models.ColumnError && v != "" {
			n++
		}
	}
	return n
}

func computeAverages(runs []runResult) *urlAverages {
	var successCount int
	var avg urlAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.LatencyMs += float64(r.LatencyMs)
		avg.FieldsFound += float64(r.FieldsFound)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.LatencyMs /= n
	avg.FieldsFound /= n
	return &avg
}

func printTable(results []urlResult) {
	fmt.Println(strings.Repeat("─", 70))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\tAvg Latency\tFields\tOK Runs\n")
	fmt.Fprintf(w, "───\t───────────\t──────\t───────\n")

	for _, r := range results {
		ok := 0
		for _, run := range r.Runs {
			if run.Success {
				ok++
			}
		}
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t0/%d\n", truncateURL(r.URL, 40), len(r.Runs))
			continue
		}
		fmt.Fprintf(w, "%s\t%dms\t%.1f/6\t%d/%d\n",
			truncateURL(r.URL, 40),
			int64(r.Averages.LatencyMs),
			r.Averages.FieldsFound,
			ok, len(r.Runs),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 70))
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return u[:max-3] + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
