package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/demandcast/core/features"
	"github.com/kilianp07/demandcast/core/forecast"
	coremetrics "github.com/kilianp07/demandcast/core/metrics"
	"github.com/kilianp07/demandcast/core/staffing"
	"github.com/kilianp07/demandcast/infra/loader"
	"github.com/kilianp07/demandcast/infra/publish"
)

// Config is the root configuration of the service.
type Config struct {
	Loader   loader.Config      `json:"loader"`
	Features FeaturesConfig     `json:"features"`
	Forecast forecast.Config    `json:"forecast"`
	Staffing staffing.Config    `json:"staffing"`
	Metrics  coremetrics.Config `json:"metrics"`
	Publish  publish.Config     `json:"publish"`
	History  HistoryConfig      `json:"history"`
	Run      RunConfig          `json:"run"`
}

// FeaturesConfig parameterises the feature builder.
type FeaturesConfig struct {
	// FestivalDates lists YYYY-MM-DD dates that count as festivals.
	FestivalDates []string               `json:"festival_dates"`
	Weather       features.WeatherConfig `json:"weather"`
}

// HistoryConfig enables the SQLite run-history store.
type HistoryConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *HistoryConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "demandcast.db"
	}
}

// RunConfig defines one pipeline run.
type RunConfig struct {
	// RestaurantID selects the forecasted restaurant; empty picks the
	// restaurant with the most observed hours.
	RestaurantID string `json:"restaurant_id"`
	HorizonHours int    `json:"horizon_hours"`
	// HoldoutDays is the evaluation window held out from training.
	HoldoutDays  int     `json:"holdout_days"`
	BaselineMAPE float64 `json:"baseline_mape"`
	// TablePath persists the hourly demand table between prepare and
	// forecast runs.
	TablePath string `json:"table_path"`
	// ModelPath persists the fitted model artifact; empty disables it.
	ModelPath string `json:"model_path"`
	// IntervalMinutes re-runs the pipeline in serve mode.
	IntervalMinutes int `json:"interval_minutes"`
}

// SetDefaults applies the reference run shape.
func (c *RunConfig) SetDefaults() {
	if c.HorizonHours == 0 {
		c.HorizonHours = 24
	}
	if c.HoldoutDays == 0 {
		c.HoldoutDays = 7
	}
	if c.BaselineMAPE == 0 {
		c.BaselineMAPE = forecast.BaselineMAPE
	}
	if c.TablePath == "" {
		c.TablePath = "demand_table.csv"
	}
	if c.IntervalMinutes == 0 {
		c.IntervalMinutes = 60
	}
}

// Validate checks mandatory fields.
func (c RunConfig) Validate() error {
	if c.HorizonHours < 1 {
		return fmt.Errorf("horizon_hours must be at least 1")
	}
	if c.HoldoutDays < 1 {
		return fmt.Errorf("holdout_days must be at least 1")
	}
	return nil
}

// Load reads the configuration file, applies DC_ environment overrides
// and validates every section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("DC_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "dc_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Loader.SetDefaults()
	cfg.Features.Weather.SetDefaults()
	cfg.Forecast.SetDefaults()
	cfg.Staffing.SetDefaults()
	cfg.Publish.SetDefaults()
	cfg.History.SetDefaults()
	cfg.Run.SetDefaults()
	if err := cfg.Forecast.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Staffing.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Run.Validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.Features.Weather.Provider(); err != nil {
		return nil, err
	}
	if _, err := features.NewCalendar(cfg.Features.FestivalDates); err != nil {
		return nil, err
	}
	return &cfg, nil
}
