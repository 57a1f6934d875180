package kpi

import (
	"campaign-kpi/errors"
	"campaign-kpi/models"
	"fmt"
)

// FillDays returns exactly one day-level point per calendar day in
// [start, end]. Points already present pass through unchanged; missing days
// get a zero-hour point with no badge. Points outside the range are dropped.
// points must be sorted ascending by date.
func (e *Engine) FillDays(points []models.Point, start, end models.Date) ([]models.Point, error) {
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}

	byDate := make(map[models.Date]models.Point, len(points))
	for _, p := range points {
		if p.NominalLengthDays != 1 {
			return nil, fmt.Errorf("%w: cannot fill %d-day periods", errors.ErrInvalidUnit, p.NominalLengthDays)
		}
		byDate[p.Start] = p
	}

	empty, err := e.table.Classify(0)
	if err != nil {
		return nil, err
	}

	totalDays := start.DaysUntil(end) + 1
	filled := make([]models.Point, 0, totalDays)
	for i := range totalDays {
		day := start.AddDays(i)
		if p, ok := byDate[day]; ok {
			filled = append(filled, p)
			continue
		}
		filled = append(filled, models.Point{
			Period: models.Period{
				Start:             day,
				NominalLengthDays: 1,
				DaysInPeriod:      1,
				IsComplete:        true,
			},
			Badge: empty,
		})
	}
	return filled, nil
}
