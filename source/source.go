// Package source loads campaign daily records from an upstream store.
package source

import (
	"campaign-kpi/errors"
	"campaign-kpi/metrics"
	"campaign-kpi/models"
	"campaign-kpi/parser"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// RecordSource returns the daily records of a campaign inside [start, end],
// sorted by date. Unknown campaigns yield errors.ErrCampaignNotFound.
type RecordSource interface {
	Records(ctx context.Context, campaignID int64, start, end models.Date) ([]models.DailyRecord, error)
	Close() error
}

// CSV is an in-memory RecordSource loaded from a parsed CSV file.
type CSV struct {
	byCampaign map[int64][]models.DailyRecord
}

// OpenCSV parses the CSV file at path.
func OpenCSV(path string) (*CSV, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	return NewCSV(file)
}

// NewCSV parses CSV rows from r.
func NewCSV(r io.Reader) (*CSV, error) {
	rows, err := parser.Parse(r)
	if err != nil {
		return nil, err
	}

	byCampaign := make(map[int64][]models.DailyRecord)
	for _, row := range rows {
		byCampaign[row.CampaignID] = append(byCampaign[row.CampaignID], row.DailyRecord)
	}
	for _, records := range byCampaign {
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Date.Before(records[j].Date)
		})
	}
	return &CSV{byCampaign: byCampaign}, nil
}

// Records implements RecordSource.
func (s *CSV) Records(_ context.Context, campaignID int64, start, end models.Date) ([]models.DailyRecord, error) {
	defer observe("csv", time.Now())

	all, ok := s.byCampaign[campaignID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", errors.ErrCampaignNotFound, campaignID)
	}

	out := make([]models.DailyRecord, 0, len(all))
	for _, r := range all {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Campaigns returns the campaign ids present in the file, ascending.
func (s *CSV) Campaigns() []int64 {
	ids := make([]int64, 0, len(s.byCampaign))
	for id := range s.byCampaign {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Close implements RecordSource.
func (s *CSV) Close() error { return nil }

func observe(kind string, started time.Time) {
	metrics.SourceQueryDurationSeconds.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}
