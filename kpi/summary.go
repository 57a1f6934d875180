package kpi

import (
	"campaign-kpi/models"
)

// Summarize rolls up records over [start, end] at daily granularity.
// Every day in the range is classified on its own hours (zero when there
// is no record), so the breakdown always sums to the inclusive day count.
// The average badge classifies the mean over days that have a record.
func (e *Engine) Summarize(records []models.DailyRecord, start, end models.Date) (models.CampaignSummary, error) {
	if err := ValidateRange(start, end); err != nil {
		return models.CampaignSummary{}, err
	}

	byDate := dailyHours(records, start, end)
	summary := models.CampaignSummary{
		Start:     start,
		End:       end,
		TotalDays: start.DaysUntil(end) + 1,
	}

	for i := range summary.TotalDays {
		hours, ok := byDate[start.AddDays(i)]
		if ok {
			summary.TotalHours += hours
			summary.DaysWithData++
		}
		assignment, err := e.table.Classify(hours)
		if err != nil {
			return models.CampaignSummary{}, err
		}
		summary.Breakdown.Add(assignment.Tier)
	}

	summary.AverageDailyHours = summary.TotalHours / float64(max(summary.DaysWithData, 1))
	average, err := e.table.Classify(summary.AverageDailyHours)
	if err != nil {
		return models.CampaignSummary{}, err
	}
	summary.AverageBadge = average.Tier

	return summary, nil
}
