package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	insider "github.com/RxDataLab/go-insider"
)

func main() {
	// Define flags
	var (
		configPath string
		outputPath string
		email      string
		logLevel   string
		timeout    time.Duration
	)

	flag.StringVar(&configPath, "config", "config.yaml", "Path to the crawl config file")
	flag.StringVar(&configPath, "c", "config.yaml", "Path to the crawl config file (shorthand)")
	flag.StringVar(&outputPath, "output", "", "Output CSV file path (default: stdout)")
	flag.StringVar(&outputPath, "o", "", "Output CSV file path (shorthand)")
	flag.StringVar(&email, "email", "", "Email for SEC User-Agent header (or use SEC_EMAIL env var)")
	flag.StringVar(&email, "e", "", "Email for SEC User-Agent (shorthand)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.DurationVar(&timeout, "timeout", 0, "Global crawl timeout (0 = none)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: insidercrawl [options]\n\n")
		fmt.Fprintf(os.Stderr, "Crawl SEC EDGAR Form 4 filings into a transaction table.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  insidercrawl -c config.yaml -o transactions.csv\n")
		fmt.Fprintf(os.Stderr, "  insidercrawl -c config.yaml -timeout 10m\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  SEC_EMAIL    Email for SEC User-Agent header (required unless configured)\n")
	}

	flag.Parse()

	if err := run(configPath, outputPath, email, logLevel, timeout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, outputPath, email, logLevel string, timeout time.Duration) error {
	cfg, err := insider.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ResolveUserAgent(email); err != nil {
		return err
	}

	log := insider.NewLogger(logLevel)

	fetcher := insider.NewFetcher(cfg.Headers, insider.FetcherOptions{
		Timeout:           time.Duration(cfg.Fetch.Timeout),
		MaxRetries:        cfg.Fetch.MaxRetries,
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
		Logger:            log,
	})
	crawler := insider.NewCrawler(fetcher, cfg.BaseURL, cfg.ExtendURL, cfg.Fetch.Workers, log)

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	table, crawlErr := crawler.Crawl(ctx, cfg.Entities)
	if crawlErr != nil && !errors.Is(crawlErr, context.DeadlineExceeded) {
		return crawlErr
	}
	if crawlErr != nil {
		// A timed-out run still yields the rows collected so far.
		log.Warn().Err(crawlErr).Msg("crawl timed out, writing partial results")
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := table.WriteCSV(out); err != nil {
		return err
	}
	if outputPath != "" {
		log.Info().Int("records", table.Len()).Str("path", outputPath).Msg("wrote transaction table")
	}
	return nil
}
