//go:build integration

package source_test

import (
	"context"
	"testing"
	"time"

	customerrors "campaign-kpi/errors"
	"campaign-kpi/models"
	"campaign-kpi/source"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("kpi_test"),
		postgres.WithUsername("kpi"),
		postgres.WithPassword("kpi_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "Failed to start postgres container")
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, source.Schema)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO campaign (id, name) VALUES (1, 'Inbound'), (2, 'Idle')`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `
INSERT INTO campaign_kpi (campaign_id, date, hours) VALUES
	(1, '2024-01-01', 250),
	(1, '2024-01-02', 0),
	(1, '2024-01-04', 61.5),
	(1, '2024-02-01', 10)`)
	require.NoError(t, err)

	return url
}

func TestPostgres_Records(t *testing.T) {
	url := startPostgres(t)
	ctx := context.Background()

	src, err := source.ConnectPostgres(ctx, url, 5*time.Second)
	require.NoError(t, err)
	defer src.Close()

	t.Run("RangeIsInclusiveAndSorted", func(t *testing.T) {
		got, err := src.Records(ctx, 1, day(1), day(31))
		require.NoError(t, err)
		assert.Equal(t, []models.DailyRecord{
			{Date: day(1), Hours: 250},
			{Date: day(2), Hours: 0},
			{Date: day(4), Hours: 61.5},
		}, got)
	})

	t.Run("KnownCampaignWithoutRows", func(t *testing.T) {
		got, err := src.Records(ctx, 2, day(1), day(31))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("UnknownCampaign", func(t *testing.T) {
		_, err := src.Records(ctx, 99, day(1), day(31))
		assert.ErrorIs(t, err, customerrors.ErrCampaignNotFound)
	})
}
