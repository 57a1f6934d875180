package kpi

import (
	"campaign-kpi/badge"
	"campaign-kpi/errors"
	"campaign-kpi/models"
	"fmt"
)

// Engine classifies KPI series and summaries against one badge table.
type Engine struct {
	table *badge.Table
}

// NewEngine returns an Engine using table, or the default table if nil.
func NewEngine(table *badge.Table) *Engine {
	if table == nil {
		table = badge.Default()
	}
	return &Engine{table: table}
}

// Table returns the badge table of the engine.
func (e *Engine) Table() *badge.Table { return e.table }

// Points classifies each period on its average daily rate against the
// unscaled daily thresholds, whatever the period length.
func (e *Engine) Points(periods []models.Period) ([]models.Point, error) {
	points := make([]models.Point, len(periods))
	for i, p := range periods {
		assignment, err := e.table.Classify(p.DailyRate())
		if err != nil {
			return nil, fmt.Errorf("period %s: %w", p.Start, err)
		}
		points[i] = models.Point{Period: p, Badge: assignment}
	}
	return points, nil
}

// Report builds the KPI view of q over records: bucketed and classified
// points plus the daily summary of the same window. Invalid records are
// dropped and returned alongside the report.
//
// Day-level reports list only days with a record unless q.ShowEmptyDays is
// set, in which case every day of the range is present.
func (e *Engine) Report(records []models.DailyRecord, q models.Query) (*models.Report, []*errors.RecordError, error) {
	if err := ValidateQuery(q); err != nil {
		return nil, nil, err
	}

	clean, rejected := CleanRecords(records)

	periods, err := Bucket(clean, q.Start, q.End, q.Unit, q.AsOf)
	if err != nil {
		return nil, rejected, err
	}
	points, err := e.Points(periods)
	if err != nil {
		return nil, rejected, err
	}

	if q.Unit == models.UnitDay {
		if q.ShowEmptyDays {
			points, err = e.FillDays(points, q.Start, q.End)
			if err != nil {
				return nil, rejected, err
			}
		} else {
			points = withData(points)
		}
	}

	summary, err := e.Summarize(clean, q.Start, q.End)
	if err != nil {
		return nil, rejected, err
	}

	return &models.Report{
		CampaignID: q.CampaignID,
		Start:      q.Start,
		End:        q.End,
		Unit:       q.Unit,
		AsOf:       q.AsOf,
		Points:     points,
		Summary:    summary,
		Rejected:   len(rejected),
	}, rejected, nil
}

// DailyBadge returns the badge earned on date and the threshold of that
// badge (0 when no badge is earned).
func (e *Engine) DailyBadge(records []models.DailyRecord, date models.Date) (models.DailyBadge, error) {
	if date.IsZero() {
		return models.DailyBadge{}, fmt.Errorf("%w: date is required", errors.ErrInvalidDate)
	}

	hours := dailyHours(records, date, date)[date]
	assignment, err := e.table.Classify(hours)
	if err != nil {
		return models.DailyBadge{}, err
	}
	return models.DailyBadge{
		Date:      date,
		Hours:     hours,
		Badge:     assignment,
		Threshold: e.table.Threshold(assignment.Tier),
	}, nil
}

// withData keeps the points backed by at least one record.
func withData(points []models.Point) []models.Point {
	out := make([]models.Point, 0, len(points))
	for _, p := range points {
		if p.DaysWithData > 0 {
			out = append(out, p)
		}
	}
	return out
}
