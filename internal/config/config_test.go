package config

import (
	"strings"
	"testing"
)

const (
	validConfigPath       = "testdata/valid_config.yaml"
	expansionConfigPath   = "testdata/expansion_config.yaml"
	nonexistentConfigPath = "testdata/nonexistent_config.yaml"
)

func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}

	if cfg.App.Name != "prediction-engine" {
		t.Errorf("expected app name 'prediction-engine', got '%s'", cfg.App.Name)
	}
	if cfg.App.Environment != "development" {
		t.Errorf("expected environment 'development', got '%s'", cfg.App.Environment)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("expected database port 5432, got %d", cfg.Database.Port)
	}
	if cfg.Engine.ModelWeight != 0.50 {
		t.Errorf("expected model weight 0.50, got %f", cfg.Engine.ModelWeight)
	}
	if cfg.Simulation.Iterations != 10000 {
		t.Errorf("expected 10000 iterations, got %d", cfg.Simulation.Iterations)
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadConfigExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "expanded_secret_value")

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}
	if cfg.Database.Password != "expanded_secret_value" {
		t.Errorf("expected password to be expanded, got '%s'", cfg.Database.Password)
	}
}

func TestLoadWithDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Engine.CacheTTLSeconds != 3600 {
		t.Errorf("expected default cache TTL 3600, got %d", cfg.Engine.CacheTTLSeconds)
	}
	if cfg.Engine.MonteCarloWeight != 0.35 {
		t.Errorf("expected default monte carlo weight 0.35, got %f", cfg.Engine.MonteCarloWeight)
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsOverweightBlend(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	cfg.Engine.PsychologyWeight = 0.6
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for blend weights above 1")
	}
	if !strings.Contains(err.Error(), "blend weights") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	cfg.App.Environment = "invalid"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
}

func TestValidateRejectsProductionWithoutSSL(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	cfg.App.Environment = "production"
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for production without SSL")
	}
	if !strings.Contains(err.Error(), "SSL") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateRejectsInvertedCalibrationWindows(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	cfg.Calibration.RecentWindowDays = 365
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for recent window longer than baseline")
	}
}

func TestOverlaySecrets(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	overlaySecretsOnConfig(cfg, &SecretsOverlay{
		DatabasePassword: "from-secrets",
		OddsAPIKey:       "odds-key",
	})
	if cfg.Database.Password != "from-secrets" {
		t.Errorf("expected database password overlay, got '%s'", cfg.Database.Password)
	}
	if cfg.Providers.OddsAPIKey != "odds-key" {
		t.Errorf("expected odds api key overlay, got '%s'", cfg.Providers.OddsAPIKey)
	}
	if cfg.Providers.CompositeAPIKey != "" {
		t.Errorf("empty secret must not overwrite, got '%s'", cfg.Providers.CompositeAPIKey)
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	dsn := cfg.GetDatabaseDSN()
	if !strings.HasPrefix(dsn, "postgres://") {
		t.Errorf("expected postgres DSN, got '%s'", dsn)
	}
	if !strings.Contains(dsn, "sslmode=disable") {
		t.Errorf("expected sslmode in DSN, got '%s'", dsn)
	}
}
