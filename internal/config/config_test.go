package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Import.BatchSize != 10 {
		t.Errorf("Import.BatchSize = %d, want %d", cfg.Import.BatchSize, 10)
	}
	if cfg.Import.RetryAttempts != 3 {
		t.Errorf("Import.RetryAttempts = %d, want %d", cfg.Import.RetryAttempts, 3)
	}
	if cfg.Import.RetryBaseDelay != time.Second {
		t.Errorf("Import.RetryBaseDelay = %v, want %v", cfg.Import.RetryBaseDelay, time.Second)
	}
	if cfg.Import.DayFirst {
		t.Error("Import.DayFirst = true, want false")
	}
	if cfg.Import.MaxConcurrent != 5 {
		t.Errorf("Import.MaxConcurrent = %d, want %d", cfg.Import.MaxConcurrent, 5)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("IMPORT_BATCH_SIZE", "25")
	t.Setenv("IMPORT_DAY_FIRST", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Import.BatchSize != 25 {
		t.Errorf("Import.BatchSize = %d, want %d", cfg.Import.BatchSize, 25)
	}
	if !cfg.Import.DayFirst {
		t.Error("Import.DayFirst = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded without DATABASE_URL, want error")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "postgres://localhost/alt")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/alt" {
		t.Errorf("Database.URL = %q, want alt value", cfg.Database.URL)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"SERVER_PORT": "99999"}},
		{"bad duration", map[string]string{"IMPORT_RETRY_BASE_DELAY": "soon"}},
		{"bad batch size", map[string]string{"IMPORT_BATCH_SIZE": "0"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"max delay below base", map[string]string{"IMPORT_RETRY_MAX_DELAY": "1ms"}},
		{"bad max concurrent", map[string]string{"IMPORT_MAX_CONCURRENT": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://localhost/test")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			if _, err := Load(); err == nil {
				t.Errorf("Load() succeeded, want error")
			}
		})
	}
}
