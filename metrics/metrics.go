// Package metrics provides Prometheus observability metrics for the KPI engine.
// It includes Critical and Important metrics for business and operational visibility.
package metrics

import (
	"campaign-kpi/errors"
	"campaign-kpi/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// CRITICAL METRICS - Business Impact Visibility
// =============================================================================

// BadgeDays tracks the badge breakdown of the last summarized window.
var BadgeDays = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "kpi",
	Name:      "badge_days",
	Help:      "Days per badge tier in the last summarized window",
}, []string{"badge"})

// AverageDailyHours tracks the average daily hours of the last summarized window.
var AverageDailyHours = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "kpi",
	Name:      "average_daily_hours",
	Help:      "Average hours per day with data in the last summarized window",
})

// TotalHours tracks the total hours of the last summarized window.
var TotalHours = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "kpi",
	Name:      "total_hours",
	Help:      "Total hours worked in the last summarized window",
})

// PartialPeriods tracks periods of the last report whose coverage is below
// their nominal length.
var PartialPeriods = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "kpi",
	Name:      "partial_periods",
	Help:      "Number of incomplete periods in the last report",
})

// RecordsRejectedTotal tracks records dropped as integrity faults, by reason.
var RecordsRejectedTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "kpi",
	Name:      "records_rejected_total",
	Help:      "Daily records rejected before aggregation, by reason",
}, []string{"reason"})

// =============================================================================
// IMPORTANT METRICS - Operational Health
// =============================================================================

// ReportsTotal tracks reports generated by grouping unit.
var ReportsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "kpi",
	Name:      "reports_total",
	Help:      "KPI reports generated, by grouping unit",
}, []string{"group_by"})

// ReportDurationSeconds tracks time to build a report.
var ReportDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "kpi",
	Name:      "report_duration_seconds",
	Help:      "Time taken to build a KPI report",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
})

// CacheRequestsTotal tracks report cache lookups by result.
var CacheRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "kpi",
	Name:      "cache_requests_total",
	Help:      "Report cache lookups, by result (hit or miss)",
}, []string{"result"})

// ParserErrorsTotal tracks parse errors by error type.
var ParserErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "errors_total",
	Help:      "Total parse errors by error type",
}, []string{"error_type"})

// ParserRecordsTotal tracks total records successfully parsed.
var ParserRecordsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "records_total",
	Help:      "Total CSV records successfully parsed",
})

// ParserDurationSeconds tracks time to parse input files.
var ParserDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "parser",
	Name:      "duration_seconds",
	Help:      "Time taken to parse CSV input file",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
})

// SourceQueryDurationSeconds tracks record source lookups by source kind.
var SourceQueryDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "source",
	Name:      "query_duration_seconds",
	Help:      "Time taken to load campaign records from the record source",
	Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
}, []string{"kind"})

// =============================================================================
// Helper Functions
// =============================================================================

// ResetReportGauges resets all report gauges before a new run.
func ResetReportGauges() {
	BadgeDays.Reset()
	AverageDailyHours.Set(0)
	TotalHours.Set(0)
	PartialPeriods.Set(0)
}

// ObserveSummary sets the summary gauges from s.
func ObserveSummary(s models.CampaignSummary) {
	for _, tier := range []models.Tier{
		models.TierPlatinum, models.TierGold, models.TierSilver, models.TierBronze, models.TierNone,
	} {
		BadgeDays.WithLabelValues(tier.String()).Set(float64(s.Breakdown.Count(tier)))
	}
	AverageDailyHours.Set(s.AverageDailyHours)
	TotalHours.Set(s.TotalHours)
}

// ObserveReport records a finished report.
func ObserveReport(r *models.Report) {
	ReportsTotal.WithLabelValues(string(r.Unit)).Inc()
	partial := 0
	for _, p := range r.Points {
		if !p.IsComplete {
			partial++
		}
	}
	PartialPeriods.Set(float64(partial))
	ObserveSummary(r.Summary)
}

// ObserveRejected counts rejected records by reason.
func ObserveRejected(rejected []*errors.RecordError) {
	for _, r := range rejected {
		RecordsRejectedTotal.WithLabelValues(r.Reason()).Inc()
	}
}
