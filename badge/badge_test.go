package badge_test

import (
	"math"
	"testing"

	"campaign-kpi/badge"
	customerrors "campaign-kpi/errors"
	"campaign-kpi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tierPtr(t models.Tier) *models.Tier { return &t }

func hoursPtr(h float64) *float64 { return &h }

func TestClassify(t *testing.T) {
	table := badge.Default()

	tests := map[string]struct {
		rate     float64
		expected models.BadgeAssignment
	}{
		"Zero": {
			rate: 0,
			expected: models.BadgeAssignment{
				Tier: models.TierNone, DailyRate: 0,
				NextTier: tierPtr(models.TierBronze), HoursToNext: hoursPtr(60),
			},
		},
		"BelowBronze": {
			rate: 30,
			expected: models.BadgeAssignment{
				Tier: models.TierNone, DailyRate: 30,
				NextTier: tierPtr(models.TierBronze), HoursToNext: hoursPtr(30),
			},
		},
		"BronzeAtThreshold": {
			rate: 60,
			expected: models.BadgeAssignment{
				Tier: models.TierBronze, DailyRate: 60,
				NextTier: tierPtr(models.TierSilver), HoursToNext: hoursPtr(60),
			},
		},
		"SilverMidTier": {
			rate: 150,
			expected: models.BadgeAssignment{
				Tier: models.TierSilver, DailyRate: 150,
				NextTier: tierPtr(models.TierGold), HoursToNext: hoursPtr(30),
			},
		},
		"GoldAtThreshold": {
			rate: 180,
			expected: models.BadgeAssignment{
				Tier: models.TierGold, DailyRate: 180,
				NextTier: tierPtr(models.TierPlatinum), HoursToNext: hoursPtr(60),
			},
		},
		"PlatinumAtThreshold": {
			rate:     240,
			expected: models.BadgeAssignment{Tier: models.TierPlatinum, DailyRate: 240},
		},
		"PlatinumAboveThreshold": {
			rate:     1000,
			expected: models.BadgeAssignment{Tier: models.TierPlatinum, DailyRate: 1000},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := table.Classify(tt.rate)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClassify_JustBelowThresholds(t *testing.T) {
	table := badge.Default()

	cases := map[float64]models.Tier{
		239.999: models.TierGold,
		179.99:  models.TierSilver,
		119.99:  models.TierBronze,
		59.99:   models.TierNone,
		60.01:   models.TierBronze,
		120.01:  models.TierSilver,
	}
	for rate, want := range cases {
		got, err := table.Classify(rate)
		require.NoError(t, err)
		assert.Equal(t, want, got.Tier, "rate %v", rate)
	}
}

func TestClassify_RejectsInvalidRate(t *testing.T) {
	table := badge.Default()

	for _, rate := range []float64{-0.5, -100, math.NaN()} {
		_, err := table.Classify(rate)
		assert.ErrorIs(t, err, customerrors.ErrInvalidRate, "rate %v", rate)
	}
}

func TestClassify_Monotonic(t *testing.T) {
	table := badge.Default()

	prev := models.TierNone
	for rate := 0.0; rate <= 400; rate += 0.25 {
		got, err := table.Classify(rate)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, int(got.Tier), int(prev), "tier dropped at rate %v", rate)
		prev = got.Tier
	}
}

func TestClassify_CustomTable(t *testing.T) {
	table, err := badge.NewTable([]badge.Threshold{
		{Tier: models.TierGold, MinDailyHours: 10},
		{Tier: models.TierBronze, MinDailyHours: 2},
	})
	require.NoError(t, err)

	got, err := table.Classify(1)
	require.NoError(t, err)
	assert.Equal(t, models.TierNone, got.Tier)
	assert.Equal(t, models.TierBronze, *got.NextTier)
	assert.InDelta(t, 1.0, *got.HoursToNext, 1e-9)

	got, err = table.Classify(5)
	require.NoError(t, err)
	assert.Equal(t, models.TierBronze, got.Tier)
	assert.Equal(t, models.TierGold, *got.NextTier)
	assert.InDelta(t, 5.0, *got.HoursToNext, 1e-9)

	got, err = table.Classify(10)
	require.NoError(t, err)
	assert.Equal(t, models.TierGold, got.Tier)
	assert.Nil(t, got.NextTier)
	assert.Nil(t, got.HoursToNext)
}

func TestNewTable_Errors(t *testing.T) {
	tests := map[string][]badge.Threshold{
		"Empty": {},
		"NoneTier": {
			{Tier: models.TierNone, MinDailyHours: 10},
		},
		"ZeroThreshold": {
			{Tier: models.TierGold, MinDailyHours: 0},
		},
		"NaNThreshold": {
			{Tier: models.TierGold, MinDailyHours: math.NaN()},
		},
		"InvertedHours": {
			{Tier: models.TierGold, MinDailyHours: 100},
			{Tier: models.TierSilver, MinDailyHours: 150},
		},
		"EqualHours": {
			{Tier: models.TierGold, MinDailyHours: 100},
			{Tier: models.TierSilver, MinDailyHours: 100},
		},
		"InvertedTiers": {
			{Tier: models.TierSilver, MinDailyHours: 200},
			{Tier: models.TierGold, MinDailyHours: 100},
		},
		"DuplicateTier": {
			{Tier: models.TierGold, MinDailyHours: 200},
			{Tier: models.TierGold, MinDailyHours: 100},
		},
		"UnknownTier": {
			{Tier: models.Tier(9), MinDailyHours: 500},
		},
	}

	for name, thresholds := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := badge.NewTable(thresholds)
			assert.ErrorIs(t, err, customerrors.ErrInvalidThresholds)
		})
	}
}

func TestNewTable_UnknownTier(t *testing.T) {
	_, err := badge.NewTable([]badge.Threshold{{Tier: models.Tier(9), MinDailyHours: 500}})
	assert.ErrorIs(t, err, customerrors.ErrUnknownTier)
}

func TestTable_Threshold(t *testing.T) {
	table := badge.Default()

	assert.Equal(t, 0.0, table.Threshold(models.TierNone))
	assert.Equal(t, 60.0, table.Threshold(models.TierBronze))
	assert.Equal(t, 120.0, table.Threshold(models.TierSilver))
	assert.Equal(t, 180.0, table.Threshold(models.TierGold))
	assert.Equal(t, 240.0, table.Threshold(models.TierPlatinum))
}

func TestTable_ThresholdsIsACopy(t *testing.T) {
	table := badge.Default()

	th := table.Thresholds()
	th[0].MinDailyHours = 1

	assert.Equal(t, 240.0, table.Threshold(models.TierPlatinum))
	assert.Equal(t, 240.0, badge.DefaultThresholds[0].MinDailyHours)
}

func TestTable_ReferenceLines(t *testing.T) {
	table := badge.Default()

	week := table.ReferenceLines(7)
	require.Len(t, week, 4)
	assert.Equal(t, badge.Threshold{Tier: models.TierPlatinum, MinDailyHours: 1680}, week[0])
	assert.Equal(t, badge.Threshold{Tier: models.TierBronze, MinDailyHours: 420}, week[3])

	// scaled lines never change classification
	got, err := table.Classify(300)
	require.NoError(t, err)
	assert.Equal(t, models.TierPlatinum, got.Tier)
}
