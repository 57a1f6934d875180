package kpi_test

import (
	"math"
	"testing"
	"time"

	customerrors "campaign-kpi/errors"
	"campaign-kpi/kpi"
	"campaign-kpi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// day returns 2024-01-<d> (d may overflow into later months).
func day(d int) models.Date {
	return models.NewDate(2024, time.January, d)
}

func rec(d int, hours float64) models.DailyRecord {
	return models.DailyRecord{Date: day(d), Hours: hours}
}

func TestBucket(t *testing.T) {
	tests := map[string]struct {
		records  []models.DailyRecord
		start    models.Date
		end      models.Date
		unit     models.Unit
		asOf     models.Date
		expected []models.Period
	}{
		"Day_TwoDays": {
			records: []models.DailyRecord{rec(1, 250), rec(2, 0)},
			start:   day(1),
			end:     day(2),
			unit:    models.UnitDay,
			expected: []models.Period{
				{Start: day(1), NominalLengthDays: 1, Hours: 250, DaysInPeriod: 1, DaysWithData: 1, IsComplete: true},
				{Start: day(2), NominalLengthDays: 1, Hours: 0, DaysInPeriod: 1, DaysWithData: 1, IsComplete: true},
			},
		},
		"Day_MissingRecordIsZeroHourPeriod": {
			records: []models.DailyRecord{rec(1, 10), rec(3, 30)},
			start:   day(1),
			end:     day(3),
			unit:    models.UnitDay,
			expected: []models.Period{
				{Start: day(1), NominalLengthDays: 1, Hours: 10, DaysInPeriod: 1, DaysWithData: 1, IsComplete: true},
				{Start: day(2), NominalLengthDays: 1, Hours: 0, DaysInPeriod: 1, DaysWithData: 0, IsComplete: true},
				{Start: day(3), NominalLengthDays: 1, Hours: 30, DaysInPeriod: 1, DaysWithData: 1, IsComplete: true},
			},
		},
		"Week_TenDaysClipsTrailingWeek": {
			records: []models.DailyRecord{rec(1, 100), rec(7, 50), rec(8, 20), rec(10, 40)},
			start:   day(1),
			end:     day(10),
			unit:    models.UnitWeek,
			expected: []models.Period{
				{Start: day(1), NominalLengthDays: 7, Hours: 150, DaysInPeriod: 7, DaysWithData: 2, IsComplete: true},
				{Start: day(8), NominalLengthDays: 3, Hours: 60, DaysInPeriod: 3, DaysWithData: 2, IsComplete: true},
			},
		},
		"Week_AnchoredAtStartNotCalendarWeek": {
			records: []models.DailyRecord{rec(3, 10)},
			start:   day(3),
			end:     day(9),
			unit:    models.UnitWeek,
			expected: []models.Period{
				{Start: day(3), NominalLengthDays: 7, Hours: 10, DaysInPeriod: 7, DaysWithData: 1, IsComplete: true},
			},
		},
		"Week_AsOfMarksPartial": {
			records: []models.DailyRecord{rec(1, 70), rec(2, 70), rec(3, 70)},
			start:   day(1),
			end:     day(14),
			unit:    models.UnitWeek,
			asOf:    day(3),
			expected: []models.Period{
				{Start: day(1), NominalLengthDays: 7, Hours: 210, DaysInPeriod: 3, DaysWithData: 3, IsComplete: false},
				{Start: day(8), NominalLengthDays: 7, Hours: 0, DaysInPeriod: 0, DaysWithData: 0, IsComplete: false},
			},
		},
		"Month_ThirtyDayApproximation": {
			records: []models.DailyRecord{rec(1, 60), rec(30, 60), rec(31, 90), rec(35, 10)},
			start:   day(1),
			end:     day(35),
			unit:    models.UnitMonth,
			expected: []models.Period{
				{Start: day(1), NominalLengthDays: 30, Hours: 120, DaysInPeriod: 30, DaysWithData: 2, IsComplete: true},
				{Start: day(31), NominalLengthDays: 5, Hours: 100, DaysInPeriod: 5, DaysWithData: 2, IsComplete: true},
			},
		},
		"RecordsOutsideRangeIgnored": {
			records: []models.DailyRecord{rec(1, 500), rec(2, 5), rec(4, 500)},
			start:   day(2),
			end:     day(3),
			unit:    models.UnitWeek,
			expected: []models.Period{
				{Start: day(2), NominalLengthDays: 2, Hours: 5, DaysInPeriod: 2, DaysWithData: 1, IsComplete: true},
			},
		},
		"InvalidRecordsContributeNothing": {
			records: []models.DailyRecord{rec(1, -40), rec(2, math.NaN()), rec(3, 12)},
			start:   day(1),
			end:     day(3),
			unit:    models.UnitWeek,
			expected: []models.Period{
				{Start: day(1), NominalLengthDays: 3, Hours: 12, DaysInPeriod: 3, DaysWithData: 1, IsComplete: true},
			},
		},
		"EmptyRecords": {
			records: nil,
			start:   day(1),
			end:     day(1),
			unit:    models.UnitMonth,
			expected: []models.Period{
				{Start: day(1), NominalLengthDays: 1, DaysInPeriod: 1, IsComplete: true},
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := kpi.Bucket(tt.records, tt.start, tt.end, tt.unit, tt.asOf)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBucket_Errors(t *testing.T) {
	tests := map[string]struct {
		start    models.Date
		end      models.Date
		unit     models.Unit
		expected error
	}{
		"StartAfterEnd": {
			start: day(5), end: day(1), unit: models.UnitDay,
			expected: customerrors.ErrInvalidRange,
		},
		"ZeroStart": {
			start: models.Date{}, end: day(1), unit: models.UnitDay,
			expected: customerrors.ErrInvalidRange,
		},
		"UnknownUnit": {
			start: day(1), end: day(5), unit: models.Unit("quarter"),
			expected: customerrors.ErrInvalidUnit,
		},
		"EmptyUnit": {
			start: day(1), end: day(5), unit: "",
			expected: customerrors.ErrInvalidUnit,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := kpi.Bucket(nil, tt.start, tt.end, tt.unit, models.Date{})
			assert.ErrorIs(t, err, tt.expected)
			assert.Nil(t, got)
		})
	}
}

func TestBucket_DayCountMatchesRange(t *testing.T) {
	for _, span := range []int{0, 1, 6, 27, 59} {
		got, err := kpi.Bucket(nil, day(1), day(1+span), models.UnitDay, models.Date{})
		require.NoError(t, err)
		require.Len(t, got, span+1)
		for _, p := range got {
			assert.Equal(t, 1, p.NominalLengthDays)
		}
	}
}

func TestBucket_DayCountMatchesRange_Centuries(t *testing.T) {
	start := models.NewDate(1500, time.January, 1)
	end := models.NewDate(2024, time.January, 1)

	got, err := kpi.Bucket(nil, start, end, models.UnitDay, models.Date{})
	require.NoError(t, err)
	require.Len(t, got, 191388)
	assert.Equal(t, start, got[0].Start)
	assert.Equal(t, end, got[len(got)-1].Start)
}

func TestBucket_LosslessAcrossUnits(t *testing.T) {
	var records []models.DailyRecord
	expected := 0.0
	for d := 1; d <= 45; d++ {
		if d%4 == 0 {
			continue
		}
		h := float64(d*7%61) + 0.5
		records = append(records, rec(d, h))
		if d >= 3 && d <= 41 {
			expected += h
		}
	}

	for _, unit := range []models.Unit{models.UnitDay, models.UnitWeek, models.UnitMonth} {
		periods, err := kpi.Bucket(records, day(3), day(41), unit, models.Date{})
		require.NoError(t, err)

		total := 0.0
		prevEnd := day(2)
		for _, p := range periods {
			assert.Equal(t, prevEnd.AddDays(1), p.Start, "gap before %s (%s)", p.Start, unit)
			prevEnd = p.End()
			total += p.Hours
		}
		assert.Equal(t, day(41), prevEnd)
		assert.InDelta(t, expected, total, 1e-9, "unit %s", unit)
	}
}

func TestBucket_DoesNotMutateInput(t *testing.T) {
	records := []models.DailyRecord{rec(3, 10), rec(1, -5), rec(2, 20)}
	snapshot := append([]models.DailyRecord(nil), records...)

	_, err := kpi.Bucket(records, day(1), day(3), models.UnitWeek, models.Date{})
	require.NoError(t, err)
	assert.Equal(t, snapshot, records)
}
