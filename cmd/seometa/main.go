package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/seometa/api/handler"
	"github.com/use-agent/seometa/batch"
	"github.com/use-agent/seometa/config"
	"github.com/use-agent/seometa/extractor"
	"github.com/use-agent/seometa/scraper"
	"github.com/use-agent/seometa/webhook"
)

// flags override the environment configuration when set.
var flags struct {
	timeout     time.Duration
	concurrency int
	userAgent   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "seometa",
		Short:   "Extract SEO metadata from web pages",
		Version: handler.Version,
		Long: `seometa fetches pages and extracts their title, meta description,
Open Graph tags, first <h1> and first substantial paragraph.

Run it as an HTTP service, or analyze URLs directly from the command line.`,
		Example: `  # Start the API and web page on :8080
  seometa serve

  # Analyze one page
  seometa analyze example.com

  # Process a spreadsheet with a "url" column
  seometa bulk urls.xlsx -o results.xlsx`,
		SilenceUsage: true,
	}

	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 0, "per-URL fetch timeout (default from SEOMETA_FETCH_TIMEOUT or 10s)")
	root.PersistentFlags().IntVar(&flags.concurrency, "concurrency", 0, "maximum concurrent fetches per batch (default from SEOMETA_CONCURRENCY or 5)")
	root.PersistentFlags().StringVar(&flags.userAgent, "user-agent", "", "User-Agent sent with every fetch")

	root.AddCommand(newServeCmd(), newAnalyzeCmd(), newBulkCmd())
	return root
}

// loadConfig reads the environment and applies any flags the user set.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()
	pf := cmd.Flags()
	if pf.Changed("timeout") {
		cfg.Fetch.Timeout = flags.timeout
	}
	if pf.Changed("concurrency") {
		cfg.Batch.Concurrency = flags.concurrency
	}
	if pf.Changed("user-agent") {
		cfg.Fetch.UserAgent = flags.userAgent
	}
	cfg.Normalize()
	return cfg
}

// newRunner wires the fetcher, extractor and optional webhook into a Runner.
func newRunner(cfg *config.Config, notifier *webhook.Notifier) *batch.Runner {
	opts := []batch.Option{batch.WithLogger(slog.Default())}
	if notifier != nil {
		opts = append(opts, batch.WithCompletionHook(notifier.BatchCompleted))
	}
	return batch.NewRunner(scraper.NewFetcher(cfg.Fetch), extractor.New(), cfg.Batch, opts...)
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig, w io.Writer) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Format == "text" {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(h))
}
