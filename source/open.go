package source

import (
	"campaign-kpi/config"
	"context"
	"fmt"
)

// Open returns the RecordSource selected by cfg.Kind.
func Open(ctx context.Context, cfg config.SourceConfig) (RecordSource, error) {
	switch cfg.Kind {
	case "csv":
		return OpenCSV(cfg.Path)
	case "postgres":
		return ConnectPostgres(ctx, cfg.DatabaseURL, cfg.ConnectTimeout)
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}
