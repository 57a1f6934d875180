package source

import (
	"campaign-kpi/errors"
	"campaign-kpi/logging"
	"campaign-kpi/models"
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the subset of the dashboard schema read by Postgres.
const Schema = `
CREATE TABLE IF NOT EXISTS campaign (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	description TEXT,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS campaign_kpi (
	id BIGSERIAL PRIMARY KEY,
	campaign_id BIGINT NOT NULL REFERENCES campaign(id) ON DELETE CASCADE,
	date DATE NOT NULL,
	hours DOUBLE PRECISION NOT NULL DEFAULT 0,
	UNIQUE (campaign_id, date)
);

CREATE INDEX IF NOT EXISTS idx_campaign_kpi_campaign_date ON campaign_kpi(campaign_id, date);
`

const campaignExistsQuery = `SELECT EXISTS (SELECT 1 FROM campaign WHERE id = $1)`

const dailyHoursQuery = `
SELECT date, SUM(hours)::float8 AS total_hours
FROM campaign_kpi
WHERE campaign_id = $1
  AND date BETWEEN $2 AND $3
GROUP BY date
ORDER BY date`

// Postgres reads daily records from the campaign_kpi table.
type Postgres struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a connection pool to databaseURL and pings it.
func ConnectPostgres(ctx context.Context, databaseURL string, timeout time.Duration) (*Postgres, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	logging.Info().Str("source", "postgres").Msg("Connected to PostgreSQL")
	return &Postgres{pool: pool}, nil
}

// Records implements RecordSource.
func (s *Postgres) Records(ctx context.Context, campaignID int64, start, end models.Date) ([]models.DailyRecord, error) {
	defer observe("postgres", time.Now())

	var exists bool
	if err := s.pool.QueryRow(ctx, campaignExistsQuery, campaignID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("error looking up campaign %d: %w", campaignID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %d", errors.ErrCampaignNotFound, campaignID)
	}

	rows, err := s.pool.Query(ctx, dailyHoursQuery, campaignID, start.Time(), end.Time())
	if err != nil {
		return nil, fmt.Errorf("error querying campaign %d: %w", campaignID, err)
	}
	defer rows.Close()

	var records []models.DailyRecord
	for rows.Next() {
		var (
			day   time.Time
			hours float64
		)
		if err := rows.Scan(&day, &hours); err != nil {
			return nil, fmt.Errorf("error scanning campaign %d: %w", campaignID, err)
		}
		records = append(records, models.DailyRecord{Date: models.DateOf(day), Hours: hours})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading campaign %d: %w", campaignID, err)
	}
	return records, nil
}

// Close implements RecordSource.
func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
