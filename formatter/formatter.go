package formatter

import (
	"campaign-kpi/badge"
	"campaign-kpi/models"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ReportData holds prepared report data used by all report formatters.
type ReportData struct {
	CampaignID     int64           `json:"campaign_id"`
	Start          string          `json:"start_date"`
	End            string          `json:"end_date"`
	GroupBy        models.Unit     `json:"group_by"`
	AsOf           string          `json:"as_of,omitempty"`
	Points         []PointData     `json:"data"`
	Summary        SummaryData     `json:"summary"`
	ReferenceLines []ThresholdData `json:"reference_lines,omitempty"`
	Rejected       int             `json:"rejected_records"`
}

// PointData is one classified period, rounded for display.
type PointData struct {
	PeriodStart  string   `json:"period_start"`
	PeriodEnd    string   `json:"period_end"`
	Hours        float64  `json:"hours"`
	DaysInPeriod int      `json:"days_in_period"`
	DaysWithData int      `json:"days_with_data"`
	IsComplete   bool     `json:"is_complete"`
	DailyRate    float64  `json:"daily_rate"`
	Badge        string   `json:"badge"`
	BadgeLabel   string   `json:"badge_label"`
	NextBadge    string   `json:"next_badge,omitempty"`
	HoursToNext  *float64 `json:"hours_to_next,omitempty"`
}

// SummaryData is the campaign summary, rounded for display.
type SummaryData struct {
	Start             string                `json:"start_date"`
	End               string                `json:"end_date"`
	TotalDays         int                   `json:"total_days"`
	TotalHours        float64               `json:"total_hours"`
	AverageDailyHours float64               `json:"average_daily_hours"`
	DaysWithData      int                   `json:"days_with_data"`
	Breakdown         models.BadgeBreakdown `json:"badge_breakdown"`
	AverageBadge      string                `json:"average_badge"`
	AverageBadgeLabel string                `json:"average_badge_label"`
}

// BadgeData is the badge of a single day, rounded for display.
type BadgeData struct {
	Date        string   `json:"date"`
	Hours       float64  `json:"hours"`
	Badge       string   `json:"badge"`
	BadgeLabel  string   `json:"badge_label"`
	Threshold   float64  `json:"threshold"`
	NextBadge   string   `json:"next_badge,omitempty"`
	HoursToNext *float64 `json:"hours_to_next,omitempty"`
}

// ThresholdData is one row of the tier table.
type ThresholdData struct {
	Badge       string  `json:"badge"`
	Label       string  `json:"label"`
	HoursPerDay float64 `json:"hours_per_day"`
}

// round1 rounds to one decimal place, half away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func formatHours(v float64) string {
	return strconv.FormatFloat(round1(v), 'f', 1, 64)
}

func nextBadge(a models.BadgeAssignment) (string, *float64) {
	if a.NextTier == nil || a.HoursToNext == nil {
		return "", nil
	}
	hours := round1(*a.HoursToNext)
	return a.NextTier.String(), &hours
}

func preparePoint(p models.Point) PointData {
	next, toNext := nextBadge(p.Badge)
	return PointData{
		PeriodStart:  p.Start.String(),
		PeriodEnd:    p.End().String(),
		Hours:        round1(p.Hours),
		DaysInPeriod: p.DaysInPeriod,
		DaysWithData: p.DaysWithData,
		IsComplete:   p.IsComplete,
		DailyRate:    round1(p.Badge.DailyRate),
		Badge:        p.Badge.Tier.String(),
		BadgeLabel:   p.Badge.Tier.Label(),
		NextBadge:    next,
		HoursToNext:  toNext,
	}
}

func prepareSummary(s models.CampaignSummary) SummaryData {
	return SummaryData{
		Start:             s.Start.String(),
		End:               s.End.String(),
		TotalDays:         s.TotalDays,
		TotalHours:        round1(s.TotalHours),
		AverageDailyHours: round1(s.AverageDailyHours),
		DaysWithData:      s.DaysWithData,
		Breakdown:         s.Breakdown,
		AverageBadge:      s.AverageBadge.String(),
		AverageBadgeLabel: s.AverageBadge.Label(),
	}
}

func prepareThresholds(thresholds []badge.Threshold) []ThresholdData {
	out := make([]ThresholdData, len(thresholds))
	for i, th := range thresholds {
		out[i] = ThresholdData{
			Badge:       th.Tier.String(),
			Label:       th.Tier.Label(),
			HoursPerDay: round1(th.MinDailyHours),
		}
	}
	return out
}

// prepareReportData extracts and organizes report data for formatting.
// Reference lines are scaled to the grouping unit when table is non-nil.
func prepareReportData(report *models.Report, table *badge.Table) *ReportData {
	data := &ReportData{
		CampaignID: report.CampaignID,
		Start:      report.Start.String(),
		End:        report.End.String(),
		GroupBy:    report.Unit,
		Points:     make([]PointData, len(report.Points)),
		Summary:    prepareSummary(report.Summary),
		Rejected:   report.Rejected,
	}
	if !report.AsOf.IsZero() {
		data.AsOf = report.AsOf.String()
	}
	for i, p := range report.Points {
		data.Points[i] = preparePoint(p)
	}
	if table != nil {
		data.ReferenceLines = prepareThresholds(table.ReferenceLines(report.Unit.NominalLength()))
	}
	return data
}

func prepareBadge(b models.DailyBadge) BadgeData {
	next, toNext := nextBadge(b.Badge)
	return BadgeData{
		Date:        b.Date.String(),
		Hours:       round1(b.Hours),
		Badge:       b.Badge.Tier.String(),
		BadgeLabel:  b.Badge.Tier.Label(),
		Threshold:   round1(b.Threshold),
		NextBadge:   next,
		HoursToNext: toNext,
	}
}

func marshal(v any) string {
	jsonBytes, _ := json.MarshalIndent(v, "", "  ")
	return string(jsonBytes)
}

// FormatReportText returns the text representation of a report, one line
// per period followed by the summary.
func FormatReportText(report *models.Report, table *badge.Table) string {
	data := prepareReportData(report, table)
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Campaign %d : %s .. %s ; group_by=%s\n",
		data.CampaignID, data.Start, data.End, data.GroupBy))

	if len(data.Points) == 0 {
		sb.WriteString("  no data\n")
	}
	for _, p := range data.Points {
		sb.WriteString(formatPointLine(p))
		sb.WriteString("\n")
	}

	if len(data.ReferenceLines) > 0 {
		parts := make([]string, len(data.ReferenceLines))
		for i, th := range data.ReferenceLines {
			parts[i] = fmt.Sprintf("%s=%s", th.Badge, strconv.FormatFloat(th.HoursPerDay, 'f', 1, 64))
		}
		sb.WriteString(fmt.Sprintf("Reference lines per %s: %s\n", data.GroupBy, strings.Join(parts, ", ")))
	}

	sb.WriteString(formatSummaryLines(data.Summary))

	if data.Rejected > 0 {
		sb.WriteString(fmt.Sprintf("  ⚠️  %d record(s) rejected\n", data.Rejected))
	}
	return sb.String()
}

// FormatReportJSON returns the JSON representation of a report.
func FormatReportJSON(report *models.Report, table *badge.Table) string {
	return marshal(prepareReportData(report, table))
}

// FormatReportCSV returns the CSV representation of a report's periods.
func FormatReportCSV(report *models.Report) string {
	data := prepareReportData(report, nil)
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write([]string{
		"Period Start", "Period End", "Hours", "Days In Period", "Days With Data",
		"Complete", "Daily Rate", "Badge", "Next Badge", "Hours To Next",
	})

	for _, p := range data.Points {
		toNext := ""
		if p.HoursToNext != nil {
			toNext = strconv.FormatFloat(*p.HoursToNext, 'f', 1, 64)
		}
		writer.Write([]string{
			p.PeriodStart,
			p.PeriodEnd,
			strconv.FormatFloat(p.Hours, 'f', 1, 64),
			strconv.Itoa(p.DaysInPeriod),
			strconv.Itoa(p.DaysWithData),
			strconv.FormatBool(p.IsComplete),
			strconv.FormatFloat(p.DailyRate, 'f', 1, 64),
			p.Badge,
			p.NextBadge,
			toNext,
		})
	}

	writer.Flush()
	return sb.String()
}

// FormatSummaryText returns the text representation of a campaign summary.
func FormatSummaryText(summary models.CampaignSummary) string {
	return formatSummaryLines(prepareSummary(summary))
}

// FormatSummaryJSON returns the JSON representation of a campaign summary.
func FormatSummaryJSON(summary models.CampaignSummary) string {
	return marshal(prepareSummary(summary))
}

// FormatBadgeText returns the text representation of a single day's badge.
func FormatBadgeText(b models.DailyBadge) string {
	data := prepareBadge(b)
	line := fmt.Sprintf("%s : hours=%s ; badge=%s (>= %s)",
		data.Date, formatHours(data.Hours), data.BadgeLabel, formatHours(data.Threshold))
	if data.HoursToNext != nil {
		line += fmt.Sprintf(" ; next=%s in %sh", data.NextBadge, formatHours(*data.HoursToNext))
	}
	return line + "\n"
}

// FormatBadgeJSON returns the JSON representation of a single day's badge.
func FormatBadgeJSON(b models.DailyBadge) string {
	return marshal(prepareBadge(b))
}

// FormatThresholdsText lists the tier table, highest tier first.
func FormatThresholdsText(table *badge.Table) string {
	var sb strings.Builder
	for _, th := range prepareThresholds(table.Thresholds()) {
		sb.WriteString(fmt.Sprintf("%-8s >= %s h/day\n", th.Label, formatHours(th.HoursPerDay)))
	}
	return sb.String()
}

// FormatThresholdsJSON returns the tier table as JSON.
func FormatThresholdsJSON(table *badge.Table) string {
	return marshal(prepareThresholds(table.Thresholds()))
}

// formatPointLine formats a single period line for text output
func formatPointLine(p PointData) string {
	line := fmt.Sprintf("%s .. %s : hours=%s ; rate=%s/day ; days=%d/%d ; badge=%s",
		p.PeriodStart, p.PeriodEnd, formatHours(p.Hours), formatHours(p.DailyRate),
		p.DaysWithData, p.DaysInPeriod, p.Badge)
	if p.HoursToNext != nil {
		line += fmt.Sprintf(" ; next=%s in %sh", p.NextBadge, formatHours(*p.HoursToNext))
	}
	if !p.IsComplete {
		line += " [partial]"
	}
	return line
}

// formatSummaryLines formats the summary block for text output
func formatSummaryLines(s SummaryData) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Summary %s .. %s : total=%sh over %d day(s) ; avg=%sh/day ; average badge=%s\n",
		s.Start, s.End, formatHours(s.TotalHours), s.TotalDays, formatHours(s.AverageDailyHours), s.AverageBadgeLabel))
	sb.WriteString(fmt.Sprintf("  days with data=%d ; platinum=%d, gold=%d, silver=%d, bronze=%d, none=%d\n",
		s.DaysWithData, s.Breakdown.Platinum, s.Breakdown.Gold, s.Breakdown.Silver,
		s.Breakdown.Bronze, s.Breakdown.None))
	return sb.String()
}
