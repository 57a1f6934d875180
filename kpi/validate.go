package kpi

import (
	"campaign-kpi/errors"
	"campaign-kpi/models"
	"fmt"
	"math"
)

// ValidateRange rejects zero dates and ranges whose start is after the end.
// Bounds are never swapped.
func ValidateRange(start, end models.Date) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", errors.ErrInvalidRange)
	}
	if start.After(end) {
		return fmt.Errorf("%w: start_date %s is after end_date %s", errors.ErrInvalidRange, start, end)
	}
	return nil
}

// ValidateUnit rejects grouping units other than day, week and month.
func ValidateUnit(unit models.Unit) error {
	if !unit.Valid() {
		return fmt.Errorf("%w: %q (want day, week or month)", errors.ErrInvalidUnit, unit)
	}
	return nil
}

// ValidateQuery checks the range and unit of q.
func ValidateQuery(q models.Query) error {
	if err := ValidateRange(q.Start, q.End); err != nil {
		return err
	}
	return ValidateUnit(q.Unit)
}

// checkRecord returns the integrity fault of r, or nil.
func checkRecord(r models.DailyRecord) error {
	switch {
	case r.Date.IsZero():
		return errors.ErrInvalidDate
	case math.IsNaN(r.Hours) || math.IsInf(r.Hours, 0):
		return errors.ErrInvalidHours
	case r.Hours < 0:
		return errors.ErrNegativeHours
	}
	return nil
}

// CleanRecords splits records into those safe to aggregate and those
// rejected as integrity faults: missing dates, NaN or infinite hours,
// negative hours, and any record for a date already seen (the first one
// wins). The input slice is not modified.
func CleanRecords(records []models.DailyRecord) ([]models.DailyRecord, []*errors.RecordError) {
	clean := make([]models.DailyRecord, 0, len(records))
	var rejected []*errors.RecordError
	seen := make(map[models.Date]struct{}, len(records))

	for _, r := range records {
		if err := checkRecord(r); err != nil {
			rejected = append(rejected, &errors.RecordError{Record: r, Err: err})
			continue
		}
		if _, dup := seen[r.Date]; dup {
			rejected = append(rejected, &errors.RecordError{Record: r, Err: errors.ErrDuplicateDate})
			continue
		}
		seen[r.Date] = struct{}{}
		clean = append(clean, r)
	}
	return clean, rejected
}

// dailyHours indexes the valid records inside [start, end] by date.
// Records CleanRecords would reject contribute nothing.
func dailyHours(records []models.DailyRecord, start, end models.Date) map[models.Date]float64 {
	byDate := make(map[models.Date]float64)
	for _, r := range records {
		if checkRecord(r) != nil || r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		if _, dup := byDate[r.Date]; dup {
			continue
		}
		byDate[r.Date] = r.Hours
	}
	return byDate
}
