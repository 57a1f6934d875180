// Package config loads runtime settings from defaults, an optional YAML file
// and the environment, in that order of precedence (lowest first).
package config

import (
	"campaign-kpi/badge"
	"campaign-kpi/models"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the environment variable holding an explicit
// config file path.
const ConfigPathEnvVar = "KPI_CONFIG_PATH"

// DefaultConfigPaths are searched in order when ConfigPathEnvVar is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/campaign-kpi/config.yaml",
}

type Config struct {
	Log        LogConfig        `koanf:"log"`
	Thresholds ThresholdsConfig `koanf:"thresholds"`
	Report     ReportConfig     `koanf:"report"`
	Source     SourceConfig     `koanf:"source"`
	Cache      CacheConfig      `koanf:"cache"`
	Metrics    MetricsConfig    `koanf:"metrics"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// ThresholdsConfig holds the minimum daily hours of each tier. Values must
// be positive and strictly decreasing from platinum to bronze.
type ThresholdsConfig struct {
	Platinum float64 `koanf:"platinum" validate:"gt=0"`
	Gold     float64 `koanf:"gold" validate:"gt=0"`
	Silver   float64 `koanf:"silver" validate:"gt=0"`
	Bronze   float64 `koanf:"bronze" validate:"gt=0"`
}

type ReportConfig struct {
	GroupBy       string `koanf:"group_by" validate:"oneof=day week month"`
	LookbackDays  int    `koanf:"lookback_days" validate:"gte=1,lte=3660"`
	ShowEmptyDays bool   `koanf:"show_empty_days"`
	Format        string `koanf:"format" validate:"oneof=text json csv"`
}

type SourceConfig struct {
	Kind           string        `koanf:"kind" validate:"oneof=csv postgres"`
	Path           string        `koanf:"path" validate:"required_if=Kind csv"`
	DatabaseURL    string        `koanf:"database_url" validate:"required_if=Kind postgres"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"gt=0"`
}

type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	MaxEntries int64         `koanf:"max_entries" validate:"gte=1"`
	TTL        time.Duration `koanf:"ttl" validate:"gte=0"`
}

// MetricsConfig controls the /metrics listener and the push gateway.
// Empty Addr or PushURL disables the respective feature.
type MetricsConfig struct {
	Addr    string        `koanf:"addr"`
	PushURL string        `koanf:"push_url" validate:"omitempty,url"`
	Job     string        `koanf:"job" validate:"required"`
	Wait    time.Duration `koanf:"wait" validate:"gte=0"`
}

func defaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Thresholds: ThresholdsConfig{
			Platinum: 240,
			Gold:     180,
			Silver:   120,
			Bronze:   60,
		},
		Report: ReportConfig{
			GroupBy:      string(models.UnitDay),
			LookbackDays: 30,
			Format:       "text",
		},
		Source: SourceConfig{
			Kind:           "csv",
			Path:           "campaign_kpi.csv",
			ConnectTimeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			MaxEntries: 1024,
			TTL:        5 * time.Minute,
		},
		Metrics: MetricsConfig{
			Job: "campaign_kpi",
		},
	}
}

// Load layers defaults, the config file (if any) and the environment, then
// validates the result.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints and the threshold ordering.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if _, err := c.BadgeTable(); err != nil {
		return err
	}
	return nil
}

// BadgeTable builds the classification table from the configured thresholds.
func (c *Config) BadgeTable() (*badge.Table, error) {
	return badge.NewTable([]badge.Threshold{
		{Tier: models.TierPlatinum, MinDailyHours: c.Thresholds.Platinum},
		{Tier: models.TierGold, MinDailyHours: c.Thresholds.Gold},
		{Tier: models.TierSilver, MinDailyHours: c.Thresholds.Silver},
		{Tier: models.TierBronze, MinDailyHours: c.Thresholds.Bronze},
	})
}

// Unit returns the configured grouping unit.
func (c *Config) Unit() models.Unit {
	return models.Unit(c.Report.GroupBy)
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var envMappings = map[string]string{
	"log_level":  "log.level",
	"log_format": "log.format",
	"log_caller": "log.caller",

	"kpi_platinum_hours": "thresholds.platinum",
	"kpi_gold_hours":     "thresholds.gold",
	"kpi_silver_hours":   "thresholds.silver",
	"kpi_bronze_hours":   "thresholds.bronze",

	"kpi_group_by":        "report.group_by",
	"kpi_lookback_days":   "report.lookback_days",
	"kpi_show_empty_days": "report.show_empty_days",
	"kpi_format":          "report.format",

	"kpi_source":          "source.kind",
	"kpi_csv_path":        "source.path",
	"database_url":        "source.database_url",
	"kpi_connect_timeout": "source.connect_timeout",

	"kpi_cache_enabled":     "cache.enabled",
	"kpi_cache_max_entries": "cache.max_entries",
	"kpi_cache_ttl":         "cache.ttl",

	"metrics_addr":     "metrics.addr",
	"metrics_push_url": "metrics.push_url",
	"metrics_job":      "metrics.job",
	"metrics_wait":     "metrics.wait",
}

// envTransformFunc maps known environment variables to config paths.
// Anything else returns "" and is ignored.
//
//	DATABASE_URL -> source.database_url
//	KPI_GROUP_BY -> report.group_by
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
