package main

import (
	"campaign-kpi/config"
	"campaign-kpi/errors"
	"campaign-kpi/formatter"
	"campaign-kpi/kpi"
	"campaign-kpi/logging"
	"campaign-kpi/metrics"
	"campaign-kpi/models"
	"campaign-kpi/source"
	"context"
	"fmt"
	"io"
	"time"
)

// options are the per-invocation inputs that do not live in the config.
type options struct {
	Mode       string
	CampaignID int64
	Start      string
	End        string
	AsOf       string
	Date       string
	// Today is the wall-clock date used when AsOf is empty.
	Today time.Time
}

// window resolves the as-of date and the [start, end] range from opts,
// falling back to the last lookbackDays days ending at the as-of date.
func (o options) window(lookbackDays int) (start, end, asOf models.Date, err error) {
	asOf = models.DateOf(o.Today)
	if o.AsOf != "" {
		if asOf, err = models.ParseDate(o.AsOf); err != nil {
			return start, end, asOf, fmt.Errorf("%w: -as-of %q", errors.ErrInvalidDate, o.AsOf)
		}
	}

	end = asOf
	if o.End != "" {
		if end, err = models.ParseDate(o.End); err != nil {
			return start, end, asOf, fmt.Errorf("%w: -end %q", errors.ErrInvalidDate, o.End)
		}
	}

	start = end.AddDays(-(lookbackDays - 1))
	if o.Start != "" {
		if start, err = models.ParseDate(o.Start); err != nil {
			return start, end, asOf, fmt.Errorf("%w: -start %q", errors.ErrInvalidDate, o.Start)
		}
	}
	return start, end, asOf, nil
}

// run executes one mode against the configured source and writes the
// formatted result to w.
func run(ctx context.Context, cfg *config.Config, opts options, w io.Writer) error {
	table, err := cfg.BadgeTable()
	if err != nil {
		return err
	}
	format := cfg.Report.Format

	if opts.Mode == "thresholds" {
		if format == "json" {
			fmt.Fprintln(w, formatter.FormatThresholdsJSON(table))
		} else {
			fmt.Fprint(w, formatter.FormatThresholdsText(table))
		}
		return nil
	}

	if opts.CampaignID < 0 {
		return fmt.Errorf("%w: -campaign is required", errors.ErrInvalidCampaign)
	}

	start, end, asOf, err := opts.window(cfg.Report.LookbackDays)
	if err != nil {
		return err
	}
	engine := kpi.NewEngine(table)

	src, err := source.Open(ctx, cfg.Source)
	if err != nil {
		return err
	}
	defer src.Close()

	switch opts.Mode {
	case "badge":
		day := asOf
		if opts.Date != "" {
			if day, err = models.ParseDate(opts.Date); err != nil {
				return fmt.Errorf("%w: -date %q", errors.ErrInvalidDate, opts.Date)
			}
		}
		records, err := src.Records(ctx, opts.CampaignID, day, day)
		if err != nil {
			return err
		}
		b, err := engine.DailyBadge(records, day)
		if err != nil {
			return err
		}
		if format == "json" {
			fmt.Fprintln(w, formatter.FormatBadgeJSON(b))
		} else {
			fmt.Fprint(w, formatter.FormatBadgeText(b))
		}
		return nil

	case "summary":
		if err := kpi.ValidateRange(start, end); err != nil {
			return err
		}
		records, err := src.Records(ctx, opts.CampaignID, start, end)
		if err != nil {
			return err
		}
		clean, rejected := kpi.CleanRecords(records)
		logRejected(opts.CampaignID, rejected)

		summary, err := engine.Summarize(clean, start, end)
		if err != nil {
			return err
		}
		metrics.ResetReportGauges()
		metrics.ObserveSummary(summary)
		if format == "json" {
			fmt.Fprintln(w, formatter.FormatSummaryJSON(summary))
		} else {
			fmt.Fprint(w, formatter.FormatSummaryText(summary))
		}
		return nil

	case "report":
		q := models.Query{
			CampaignID:    opts.CampaignID,
			Start:         start,
			End:           end,
			Unit:          cfg.Unit(),
			AsOf:          asOf,
			ShowEmptyDays: cfg.Report.ShowEmptyDays,
		}
		if err := kpi.ValidateQuery(q); err != nil {
			return err
		}
		records, err := src.Records(ctx, opts.CampaignID, start, end)
		if err != nil {
			return err
		}

		report, err := buildReport(cfg, engine, records, q)
		if err != nil {
			return err
		}

		switch format {
		case "json":
			fmt.Fprintln(w, formatter.FormatReportJSON(report, table))
		case "csv":
			fmt.Fprint(w, formatter.FormatReportCSV(report))
		default:
			fmt.Fprint(w, formatter.FormatReportText(report, table))
		}
		return nil

	default:
		return fmt.Errorf("unknown mode %q (want report|summary|badge|thresholds)", opts.Mode)
	}
}

// buildReport runs the engine, through the report cache when enabled, and
// records metrics for the result.
func buildReport(cfg *config.Config, engine *kpi.Engine, records []models.DailyRecord, q models.Query) (*models.Report, error) {
	started := time.Now()
	defer func() {
		metrics.ReportDurationSeconds.Observe(time.Since(started).Seconds())
	}()

	var (
		report   *models.Report
		rejected []*errors.RecordError
		err      error
	)
	if cfg.Cache.Enabled {
		cache, cerr := kpi.NewCache(engine, cfg.Cache.MaxEntries, cfg.Cache.TTL)
		if cerr != nil {
			return nil, cerr
		}
		defer cache.Close()
		report, rejected, err = cache.Report(records, q)
	} else {
		report, rejected, err = engine.Report(records, q)
	}
	logRejected(q.CampaignID, rejected)
	if err != nil {
		return nil, err
	}

	metrics.ResetReportGauges()
	metrics.ObserveReport(report)
	logging.Debug().
		Int64("campaign", q.CampaignID).
		Str("group_by", string(q.Unit)).
		Int("points", len(report.Points)).
		Msg("Report built")
	return report, nil
}

func logRejected(campaignID int64, rejected []*errors.RecordError) {
	metrics.ObserveRejected(rejected)
	for _, r := range rejected {
		logging.Warn().
			Int64("campaign", campaignID).
			Str("date", r.Record.Date.String()).
			Float64("hours", r.Record.Hours).
			Str("reason", r.Reason()).
			Msg("Record rejected")
	}
}
