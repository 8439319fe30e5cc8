package config

import (
	"os"
	"testing"
)

// Test environment variable keys.
const (
	testEnvPostgresDSN = "POSTGRES_DSN"
)

// Test values.
const (
	testPostgresDSN  = "postgres://localhost/test"
	testErrLoad      = "Load() error = %v"
	testDefaultEnv   = "local"
	testDefaultModel = "gpt-4o-mini"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()

	t.Setenv(testEnvPostgresDSN, testPostgresDSN)
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv(testEnvPostgresDSN)

	_, err := Load()
	if err == nil {
		t.Error("expected error for missing required env vars")
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.PostgresDSN != testPostgresDSN {
		t.Errorf("PostgresDSN = %q, want %q", cfg.PostgresDSN, testPostgresDSN)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnvVars(t)

	// Explicitly unset variables that might be in .env to test actual defaults
	os.Unsetenv("APP_ENV")
	os.Unsetenv("LLM_MODEL")
	os.Unsetenv("SIMILARITY_THRESHOLD")
	os.Unsetenv("WORKER_BATCH_SIZE")
	os.Unsetenv("HEALTH_PORT")
	os.Unsetenv("STACKEXCHANGE_SITE")
	os.Unsetenv("HARVEST_INTERVAL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.AppEnv != testDefaultEnv {
		t.Errorf("AppEnv default = %q, want %q", cfg.AppEnv, testDefaultEnv)
	}

	if cfg.LLMModel != testDefaultModel {
		t.Errorf("LLMModel default = %q, want %q", cfg.LLMModel, testDefaultModel)
	}

	if cfg.SimilarityThreshold != 0.85 {
		t.Errorf("SimilarityThreshold default = %v, want %v", cfg.SimilarityThreshold, 0.85)
	}

	if cfg.WorkerBatchSize != 100 {
		t.Errorf("WorkerBatchSize default = %d, want %d", cfg.WorkerBatchSize, 100)
	}

	if cfg.HealthPort != 8080 {
		t.Errorf("HealthPort default = %d, want %d", cfg.HealthPort, 8080)
	}

	if cfg.StackExchangeSite != "stackoverflow" {
		t.Errorf("StackExchangeSite default = %q, want %q", cfg.StackExchangeSite, "stackoverflow")
	}

	if cfg.HarvestInterval != "15m" {
		t.Errorf("HarvestInterval default = %q, want %q", cfg.HarvestInterval, "15m")
	}
}
