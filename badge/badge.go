// Package badge maps a daily worked-hours rate to a badge tier.
package badge

import (
	"campaign-kpi/errors"
	"campaign-kpi/models"
	"fmt"
	"math"
)

// Threshold binds a tier to the minimum hours per day that earns it.
type Threshold struct {
	Tier          models.Tier `json:"badge"`
	MinDailyHours float64     `json:"hours_per_day"`
}

// DefaultThresholds is the standard tier table, highest tier first.
var DefaultThresholds = []Threshold{
	{Tier: models.TierPlatinum, MinDailyHours: 240},
	{Tier: models.TierGold, MinDailyHours: 180},
	{Tier: models.TierSilver, MinDailyHours: 120},
	{Tier: models.TierBronze, MinDailyHours: 60},
}

// Table is an ordered, validated tier table. It is immutable and safe for
// concurrent use.
type Table struct {
	tiers []Threshold
}

// NewTable validates thresholds and returns a Table.
// Thresholds must be given highest tier first, with strictly decreasing
// tiers and strictly decreasing positive hours. TierNone cannot be listed.
func NewTable(thresholds []Threshold) (*Table, error) {
	if len(thresholds) == 0 {
		return nil, fmt.Errorf("%w: table is empty", errors.ErrInvalidThresholds)
	}
	for i, th := range thresholds {
		if th.Tier == models.TierNone {
			return nil, fmt.Errorf("%w: tier %s cannot carry a threshold", errors.ErrInvalidThresholds, th.Tier)
		}
		if th.Tier < models.TierNone || th.Tier > models.TierPlatinum {
			return nil, fmt.Errorf("%w: %w %d", errors.ErrInvalidThresholds, errors.ErrUnknownTier, int(th.Tier))
		}
		if math.IsNaN(th.MinDailyHours) || math.IsInf(th.MinDailyHours, 0) || th.MinDailyHours <= 0 {
			return nil, fmt.Errorf("%w: %s threshold must be a positive number, got %v",
				errors.ErrInvalidThresholds, th.Tier, th.MinDailyHours)
		}
		if i == 0 {
			continue
		}
		prev := thresholds[i-1]
		if th.Tier >= prev.Tier {
			return nil, fmt.Errorf("%w: %s listed after %s", errors.ErrInvalidThresholds, th.Tier, prev.Tier)
		}
		if th.MinDailyHours >= prev.MinDailyHours {
			return nil, fmt.Errorf("%w: %s (%v) must be below %s (%v)",
				errors.ErrInvalidThresholds, th.Tier, th.MinDailyHours, prev.Tier, prev.MinDailyHours)
		}
	}

	tiers := make([]Threshold, len(thresholds))
	copy(tiers, thresholds)
	return &Table{tiers: tiers}, nil
}

// Default returns the standard 240/180/120/60 table.
func Default() *Table {
	t, err := NewTable(DefaultThresholds)
	if err != nil {
		panic(err)
	}
	return t
}

// Thresholds returns a copy of the table, highest tier first.
func (t *Table) Thresholds() []Threshold {
	out := make([]Threshold, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// Threshold returns the hours per day required for tier, or 0 for TierNone
// and for tiers the table does not contain.
func (t *Table) Threshold(tier models.Tier) float64 {
	for _, th := range t.tiers {
		if th.Tier == tier {
			return th.MinDailyHours
		}
	}
	return 0
}

// Classify returns the highest tier whose threshold is at or below
// dailyRate, and the next tier up with the hours still missing to reach it.
// dailyRate must be a non-negative number.
func (t *Table) Classify(dailyRate float64) (models.BadgeAssignment, error) {
	if math.IsNaN(dailyRate) || dailyRate < 0 {
		return models.BadgeAssignment{}, fmt.Errorf("%w: %v", errors.ErrInvalidRate, dailyRate)
	}

	assignment := models.BadgeAssignment{Tier: models.TierNone, DailyRate: dailyRate}

	// index of the earned tier; len(t.tiers) stands for TierNone
	earned := len(t.tiers)
	for i, th := range t.tiers {
		if dailyRate >= th.MinDailyHours {
			earned = i
			break
		}
	}
	if earned < len(t.tiers) {
		assignment.Tier = t.tiers[earned].Tier
	}
	if earned == 0 {
		return assignment, nil
	}

	next := t.tiers[earned-1]
	toNext := max(next.MinDailyHours-dailyRate, 0)
	assignment.NextTier = &next.Tier
	assignment.HoursToNext = &toNext
	return assignment, nil
}

// ReferenceLines returns the thresholds scaled to a period of
// nominalLengthDays days, for drawing period-total reference lines.
// Classification never uses these values.
func (t *Table) ReferenceLines(nominalLengthDays int) []Threshold {
	days := float64(max(nominalLengthDays, 1))
	out := make([]Threshold, len(t.tiers))
	for i, th := range t.tiers {
		out[i] = Threshold{Tier: th.Tier, MinDailyHours: th.MinDailyHours * days}
	}
	return out
}
