package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/config"
	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/crawl"
	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/ingest"
	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/models"
	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/pipeline"
)

func main() {
	defaults := config.DefaultConfig()

	configPath := flag.String("config", "", "YAML config file path")
	inputFile := flag.String("input", defaults.InputFile, "Keyword export to analyse (.csv or .jsonl)")
	outputFile := flag.String("output", defaults.OutputFile, "Report file path")
	outputFormat := flag.String("format", defaults.OutputFormat, "Output format: csv, json, or xlsx")
	positionLow := flag.Int("position-low", defaults.PositionLow, "Lower bound of the striking-distance band")
	positionHigh := flag.Int("position-high", defaults.PositionHigh, "Upper bound of the striking-distance band")
	minImpressions := flag.Int("min-impressions", defaults.MinImpressions, "Drop keywords below this impression count")
	blocklistFile := flag.String("blocklist", "", "File of keywords to exclude, one per line")
	concurrency := flag.Int("concurrency", defaults.Concurrency, "Number of URLs fetched per batch")
	batchDelayMs := flag.Int("batch-delay", int(defaults.BatchDelay/time.Millisecond), "Delay between batches (milliseconds)")
	maxURLs := flag.Int("max-urls", defaults.MaxURLs, "Maximum distinct URLs fetched per run")
	bodyLimit := flag.Int("body-limit", defaults.BodyCharLimit, "Characters of body text considered for matching")
	timeoutSec := flag.Int("timeout", int(defaults.Timeout/time.Second), "Per-request timeout (seconds)")
	userAgent := flag.String("user-agent", defaults.UserAgent, "User-Agent header sent with requests")
	respectRobots := flag.Bool("respect-robots", defaults.RespectRobotsTxt, "Respect robots.txt directives")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	metricsAddr := flag.String("metrics-addr", defaults.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")

	flag.Parse()

	cfg, err := buildConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		os.Exit(1)
	}

	// Precedence: defaults, then config file, then environment, then flags.
	if err := applyEnv(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputFile = *inputFile
		case "output":
			cfg.OutputFile = *outputFile
		case "format":
			cfg.OutputFormat = strings.ToLower(*outputFormat)
		case "position-low":
			cfg.PositionLow = *positionLow
		case "position-high":
			cfg.PositionHigh = *positionHigh
		case "min-impressions":
			cfg.MinImpressions = *minImpressions
		case "concurrency":
			cfg.Concurrency = *concurrency
		case "batch-delay":
			cfg.BatchDelay = time.Duration(*batchDelayMs) * time.Millisecond
		case "max-urls":
			cfg.MaxURLs = *maxURLs
		case "body-limit":
			cfg.BodyCharLimit = *bodyLimit
		case "timeout":
			cfg.Timeout = time.Duration(*timeoutSec) * time.Second
		case "user-agent":
			cfg.UserAgent = *userAgent
		case "respect-robots":
			cfg.RespectRobotsTxt = *respectRobots
		case "v":
			cfg.Verbose = *verbose
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		}
	})

	if *blocklistFile != "" {
		terms, err := config.LoadBlocklist(*blocklistFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
			os.Exit(1)
		}
		cfg.Blocklist = append(cfg.Blocklist, terms...)
	}

	logger, level := newLogger(cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.InputFile == "" {
		slog.Error("input file is required (-input or config file)")
		os.Exit(1)
	}

	records, err := ingest.ReadRecords(cfg.InputFile)
	if err != nil {
		slog.Error("reading input", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("input loaded",
		slog.String("file", cfg.InputFile),
		slog.Int("records", len(records)),
	)

	crawler, err := crawl.New(cfg)
	if err != nil {
		slog.Error("initialising crawler", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, waiting for in-flight work to finish")
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && crawler.Metrics != nil {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(crawler.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	p := pipeline.New(cfg, crawler)
	report, err := p.Run(ctx, records)
	if err != nil {
		slog.Error("analysis failed", slog.Any("error", err))
		os.Exit(1)
	}

	writer, err := pipeline.NewWriter(cfg.OutputFormat, cfg.OutputFile)
	if err != nil {
		slog.Error("creating writer", slog.Any("error", err))
		os.Exit(1)
	}
	if err := writer.Write(report); err != nil {
		slog.Error("writing report", slog.Any("error", err))
		writer.Close()
		os.Exit(1)
	}
	if err := writer.Validate(); err != nil {
		slog.Error("output validation failed", slog.Any("error", err))
		os.Exit(1)
	}
	if err := writer.Close(); err != nil {
		slog.Error("close writer", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(report, cfg.OutputFile)
}

func buildConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadFile(configPath)
}

func applyEnv(cfg *config.Config) error {
	if value, ok := config.EnvString("STRIKING_INPUT"); ok {
		cfg.InputFile = value
	}
	if value, ok := config.EnvString("STRIKING_OUTPUT"); ok {
		cfg.OutputFile = value
	}
	if value, ok := config.EnvString("STRIKING_METRICS_ADDR"); ok {
		cfg.MetricsAddr = value
	}
	if value, ok, err := config.EnvInt("STRIKING_CONCURRENCY"); err != nil {
		return err
	} else if ok {
		cfg.Concurrency = value
	}
	if value, ok, err := config.EnvInt("STRIKING_MAX_URLS"); err != nil {
		return err
	} else if ok {
		cfg.MaxURLs = value
	}
	return nil
}

func printSummary(report *models.Report, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Analysis complete")

	fmt.Printf("  Keywords analysed:   %d\n", report.Summary.TotalRecords)
	fmt.Printf("  Unique URLs:         %d\n", report.Summary.UniqueURLs)
	fmt.Printf("  Striking distance:   %d\n", len(report.StrikingDistance))
	fmt.Printf("  Fully optimized:     %d\n", len(report.FullyOptimized))
	fmt.Printf("  Blocked:             %d\n", len(report.Blocked))
	fmt.Printf("  URLs not found:      %d\n", len(report.URLNotFound))
	fmt.Printf("  Skipped (URL cap):   %d\n", len(report.Skipped))
	if n := len(report.Blocklisted) + len(report.OutOfRange) + len(report.LowVolume); n > 0 {
		fmt.Printf("  Filtered out:        %d\n", n)
	}
	if len(report.Rejected) > 0 {
		fmt.Printf("  Rejected rows:       %d\n", len(report.Rejected))
	}
	if len(report.Summary.CrawlFailures) > 0 {
		fmt.Printf("  Crawl failures:      %v\n", report.Summary.CrawlFailures)
	}
	fmt.Printf("  Duration:            %v\n", report.Summary.Duration().Round(time.Millisecond))
	fmt.Printf("  Output file:         %s\n", outputFile)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
