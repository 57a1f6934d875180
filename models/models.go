package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar-date layout used for input and output.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time-of-day component.
// It is stored as midnight UTC so that values compare with == and can be
// used as map keys.
type Date struct {
	t time.Time
}

// NewDate returns the calendar day y-m-d.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses an ISO "2006-01-02" date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.t.IsZero() }

// AddDays returns d shifted by n calendar days.
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool { return d.t.After(other.t) }

const secondsPerDay = 24 * 60 * 60

// DaysUntil returns the number of calendar days from d to other.
// It is negative when other is before d.
func (d Date) DaysUntil(other Date) int {
	return int((other.t.Unix() - d.t.Unix()) / secondsPerDay)
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time { return d.t }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DailyRecord is the hours worked on a campaign on one calendar day.
type DailyRecord struct {
	Date  Date    `json:"date"`
	Hours float64 `json:"hours"`
}

// CampaignRecord is a DailyRecord tagged with the campaign it belongs to,
// as read from an upstream record store.
type CampaignRecord struct {
	CampaignID int64
	DailyRecord
}

// Unit is the grouping unit for bucketing a date range.
type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
)

// NominalLength returns the nominal number of days in a period of u,
// or 0 for an unknown unit. Month is a fixed 30-day approximation.
func (u Unit) NominalLength() int {
	switch u {
	case UnitDay:
		return 1
	case UnitWeek:
		return 7
	case UnitMonth:
		return 30
	default:
		return 0
	}
}

// Valid reports whether u is one of day, week or month.
func (u Unit) Valid() bool { return u.NominalLength() > 0 }

// Period is the aggregate of daily records over a contiguous span of days.
type Period struct {
	Start             Date    `json:"period_start"`
	NominalLengthDays int     `json:"nominal_length_days"`
	Hours             float64 `json:"hours"`
	// DaysInPeriod counts days of the span inside the query range and not
	// after the as-of date. It is the classification denominator.
	DaysInPeriod int `json:"days_in_period"`
	// DaysWithData counts days of the span that have a record.
	DaysWithData int  `json:"days_with_data"`
	IsComplete   bool `json:"is_complete"`
}

// End returns the last calendar day covered by the period.
func (p Period) End() Date { return p.Start.AddDays(p.NominalLengthDays - 1) }

// DailyRate returns hours per covered day.
func (p Period) DailyRate() float64 {
	return p.Hours / float64(max(p.DaysInPeriod, 1))
}

// Tier is a badge tier. Higher values rank higher.
type Tier int

const (
	TierNone Tier = iota
	TierBronze
	TierSilver
	TierGold
	TierPlatinum
)

var tierNames = map[Tier]string{
	TierNone:     "none",
	TierBronze:   "bronze",
	TierSilver:   "silver",
	TierGold:     "gold",
	TierPlatinum: "platinum",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Label returns the display label of the tier.
func (t Tier) Label() string {
	if t == TierNone {
		return "No Badge"
	}
	name := t.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

// ParseTier parses a tier name such as "gold". Matching is case-insensitive.
func ParseTier(s string) (Tier, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for tier, name := range tierNames {
		if name == s {
			return tier, nil
		}
	}
	return TierNone, fmt.Errorf("unknown tier %q", s)
}

func (t Tier) MarshalText() ([]byte, error) {
	if _, ok := tierNames[t]; !ok {
		return nil, fmt.Errorf("unknown tier %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// BadgeAssignment is the tier earned by a daily rate and the distance to the
// tier above it. NextTier and HoursToNext are nil at the top tier.
type BadgeAssignment struct {
	Tier        Tier     `json:"badge"`
	DailyRate   float64  `json:"daily_rate"`
	NextTier    *Tier    `json:"next_badge,omitempty"`
	HoursToNext *float64 `json:"hours_to_next,omitempty"`
}

// Point is a classified period, one entry of a KPI series.
type Point struct {
	Period
	Badge BadgeAssignment `json:"badge"`
}

// BadgeBreakdown counts days per tier over a window.
type BadgeBreakdown struct {
	Platinum int `json:"platinum"`
	Gold     int `json:"gold"`
	Silver   int `json:"silver"`
	Bronze   int `json:"bronze"`
	None     int `json:"none"`
}

// Add increments the counter of tier.
func (b *BadgeBreakdown) Add(tier Tier) {
	switch tier {
	case TierPlatinum:
		b.Platinum++
	case TierGold:
		b.Gold++
	case TierSilver:
		b.Silver++
	case TierBronze:
		b.Bronze++
	default:
		b.None++
	}
}

// Count returns the counter of tier.
func (b BadgeBreakdown) Count(tier Tier) int {
	switch tier {
	case TierPlatinum:
		return b.Platinum
	case TierGold:
		return b.Gold
	case TierSilver:
		return b.Silver
	case TierBronze:
		return b.Bronze
	default:
		return b.None
	}
}

// Total returns the sum of all counters.
func (b BadgeBreakdown) Total() int {
	return b.Platinum + b.Gold + b.Silver + b.Bronze + b.None
}

// CampaignSummary is the daily-granularity rollup of a campaign over
// [Start, End].
type CampaignSummary struct {
	Start             Date           `json:"start_date"`
	End               Date           `json:"end_date"`
	TotalDays         int            `json:"total_days"`
	TotalHours        float64        `json:"total_hours"`
	AverageDailyHours float64        `json:"average_daily_hours"`
	DaysWithData      int            `json:"days_with_data"`
	Breakdown         BadgeBreakdown `json:"badge_breakdown"`
	AverageBadge      Tier           `json:"average_badge"`
}

// IsEmpty reports whether the window had no recorded hours at all.
func (s CampaignSummary) IsEmpty() bool {
	return s.DaysWithData == 0 && s.TotalHours == 0
}

// Query selects a campaign window and grouping for a KPI report.
// A zero AsOf disables as-of clipping.
type Query struct {
	CampaignID    int64
	Start         Date
	End           Date
	Unit          Unit
	AsOf          Date
	ShowEmptyDays bool
}

// Report is the KPI view of a campaign: classified periods plus the
// daily-granularity summary of the same window.
type Report struct {
	CampaignID int64           `json:"campaign_id"`
	Start      Date            `json:"start_date"`
	End        Date            `json:"end_date"`
	Unit       Unit            `json:"group_by"`
	AsOf       Date            `json:"as_of,omitempty"`
	Points     []Point         `json:"data"`
	Summary    CampaignSummary `json:"summary"`
	// Rejected counts input records dropped as integrity faults.
	Rejected int `json:"rejected_records"`
}

// DailyBadge is the badge earned on a single day.
type DailyBadge struct {
	Date      Date            `json:"date"`
	Hours     float64         `json:"hours"`
	Badge     BadgeAssignment `json:"badge"`
	Threshold float64         `json:"threshold"`
}
