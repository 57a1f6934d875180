// Package kpi aggregates daily worked-hours records into classified KPI
// series and campaign summaries. Every function is pure: inputs are never
// modified and results are fresh values, so calls may run concurrently.
package kpi

import (
	"campaign-kpi/models"
)

// Bucket partitions [start, end] into consecutive periods of unit, anchored
// at start, and sums the daily records falling in each period.
//
// Week and month periods are 7 and 30 days long; the trailing period is
// clipped to the days left in the range and judged complete against that
// clipped length. Days after asOf are not counted in DaysInPeriod, so a
// period reaching past asOf is incomplete. A zero asOf disables clipping.
//
// Periods come back in ascending order with no gaps, including periods
// without any record.
func Bucket(records []models.DailyRecord, start, end models.Date, unit models.Unit, asOf models.Date) ([]models.Period, error) {
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}
	if err := ValidateUnit(unit); err != nil {
		return nil, err
	}

	byDate := dailyHours(records, start, end)
	totalDays := start.DaysUntil(end) + 1
	nominal := unit.NominalLength()

	periods := make([]models.Period, 0, (totalDays+nominal-1)/nominal)
	for offset := 0; offset < totalDays; offset += nominal {
		p := models.Period{
			Start:             start.AddDays(offset),
			NominalLengthDays: min(nominal, totalDays-offset),
		}
		for i := range p.NominalLengthDays {
			day := p.Start.AddDays(i)
			if hours, ok := byDate[day]; ok {
				p.Hours += hours
				p.DaysWithData++
			}
			if asOf.IsZero() || !day.After(asOf) {
				p.DaysInPeriod++
			}
		}
		p.IsComplete = p.DaysInPeriod == p.NominalLengthDays
		periods = append(periods, p)
	}

	return periods, nil
}
