// Package config provides configuration management for the prediction
// engine.
package config

import (
	"fmt"
)

// Config represents the complete application configuration.
type Config struct {
	App         AppConfig         `mapstructure:"app" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database" validate:"required"`
	Engine      EngineConfig      `mapstructure:"engine" validate:"required"`
	Simulation  SimulationConfig  `mapstructure:"simulation" validate:"required"`
	Calibration CalibrationConfig `mapstructure:"calibration" validate:"required"`
	Providers   ProvidersConfig   `mapstructure:"providers"`
	Metrics     MetricsConfig     `mapstructure:"metrics" validate:"required"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
}

// AppConfig represents application-level configuration.
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration.
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// EngineConfig represents prediction orchestrator configuration. The three
// blend weights must not exceed 1 in total.
type EngineConfig struct {
	CacheTTLSeconds    int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheMaxSize       int     `mapstructure:"cache_max_size" validate:"required,gt=0"`
	MonteCarloWeight   float64 `mapstructure:"monte_carlo_weight" validate:"gte=0,lte=1"`
	ModelWeight        float64 `mapstructure:"model_weight" validate:"gte=0,lte=1"`
	PsychologyWeight   float64 `mapstructure:"psychology_weight" validate:"gte=0,lte=1"`
	BatchParallelism   int     `mapstructure:"batch_parallelism" validate:"required,gt=0"`
	MarketLinesEnabled bool    `mapstructure:"market_lines_enabled"`
}

// SimulationConfig represents Monte Carlo simulator configuration.
type SimulationConfig struct {
	Iterations int     `mapstructure:"iterations" validate:"required,gt=0"`
	Seed       int64   `mapstructure:"seed"`
	HomeEdge   float64 `mapstructure:"home_edge" validate:"gte=0,lte=0.2"`
}

// CalibrationConfig represents calibration engine configuration.
type CalibrationConfig struct {
	RecentWindowDays int `mapstructure:"recent_window_days" validate:"required,gt=0"`
	BaselineDays     int `mapstructure:"baseline_days" validate:"required,gt=0"`
	MinSampleSize    int `mapstructure:"min_sample_size" validate:"required,gt=0"`
}

// ProvidersConfig represents optional external feed configuration. Empty
// URLs disable the corresponding feed.
type ProvidersConfig struct {
	CompositeBaseURL  string  `mapstructure:"composite_base_url" validate:"omitempty,url"`
	CompositeAPIKey   string  `mapstructure:"composite_api_key"`
	OddsBaseURL       string  `mapstructure:"odds_base_url" validate:"omitempty,url"`
	OddsAPIKey        string  `mapstructure:"odds_api_key"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"omitempty,gt=0"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig represents cron job configuration.
type SchedulerConfig struct {
	Enabled             bool   `mapstructure:"enabled"`
	CalibrationSchedule string `mapstructure:"calibration_schedule"`
	DecaySchedule       string `mapstructure:"decay_schedule"`
}

// IsDevelopment checks if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string.
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
