package main

import (
	"campaign-kpi/config"
	"campaign-kpi/logging"
	"campaign-kpi/metrics"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/push"
)

func main() {
	// Define flags
	configPath := flag.String("config", "", "YAML config file (default: $KPI_CONFIG_PATH or ./config.yaml)")
	input := flag.String("input", "", "Input CSV file (overrides source.path and selects the csv source)")
	campaign := flag.Int64("campaign", -1, "Campaign ID (required)")
	start := flag.String("start", "", "First day of the range, YYYY-MM-DD (default: end - lookback_days + 1)")
	end := flag.String("end", "", "Last day of the range, YYYY-MM-DD (default: as-of date)")
	asOf := flag.String("as-of", "", "Date treated as today for partial periods, YYYY-MM-DD (default: today)")
	date := flag.String("date", "", "Day to classify in badge mode, YYYY-MM-DD (default: as-of date)")
	groupBy := flag.String("group-by", "", "Grouping unit: day|week|month")
	format := flag.String("format", "", "Output format: text|json|csv")
	mode := flag.String("mode", "report", "Output mode: report|summary|badge|thresholds")
	showEmptyDays := flag.Bool("show-empty-days", false, "List days without records in day-level reports")
	metricsAddr := flag.String("metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	pushGateway := flag.String("push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	wait := flag.Bool("wait", false, "Keep process running after completion to allow for metric scraping")

	// Parse command-line flags
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags override config
	if *input != "" {
		cfg.Source.Kind = "csv"
		cfg.Source.Path = *input
	}
	if *groupBy != "" {
		cfg.Report.GroupBy = *groupBy
	}
	if *format != "" {
		cfg.Report.Format = *format
	}
	if *showEmptyDays {
		cfg.Report.ShowEmptyDays = true
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	if *pushGateway != "" {
		cfg.Metrics.PushURL = *pushGateway
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start metrics server if address provided
	var server *metricsServer
	if cfg.Metrics.Addr != "" {
		server = startMetricsServer(cfg.Metrics.Addr)
	}

	opts := options{
		Mode:       *mode,
		CampaignID: *campaign,
		Start:      *start,
		End:        *end,
		AsOf:       *asOf,
		Date:       *date,
		Today:      time.Now(),
	}
	if err := run(ctx, cfg, opts, os.Stdout); err != nil {
		logging.Error().Err(err).Str("mode", opts.Mode).Msg("Run failed")
		if server != nil {
			server.Shutdown()
		}
		os.Exit(1)
	}

	// Handle metrics pushing or waiting
	if cfg.Metrics.PushURL != "" {
		if err := push.New(cfg.Metrics.PushURL, cfg.Metrics.Job).Gatherer(metrics.Registry).Push(); err != nil {
			logging.Error().Err(err).Str("url", cfg.Metrics.PushURL).Msg("Error pushing to Pushgateway")
		} else {
			logging.Info().Str("url", cfg.Metrics.PushURL).Msg("Metrics pushed to Pushgateway")
		}
	}

	if server == nil {
		return
	}
	if *wait {
		logging.Info().Msg("Process kept alive for metric scraping. Press Ctrl+C to exit.")
		<-ctx.Done()
	} else if cfg.Metrics.PushURL == "" {
		// Allow a final scrape when neither waiting nor pushing
		select {
		case <-ctx.Done():
		case <-time.After(max(cfg.Metrics.Wait, 100*time.Millisecond)):
		}
	}
	server.Shutdown()
}
