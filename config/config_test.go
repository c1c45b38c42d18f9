package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/artpar/homekeep/config"
	"github.com/shopspring/decimal"
)

func writeAndLoad(t *testing.T, content string) *config.Config {
	t.Helper()
	cfg, err := config.Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return cfg
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 15s
  cors_origins: ["https://home.example"]

database:
  driver: "sqlite"
  dsn: ":memory:"

billing:
  platform_fee: "7.50"
  currency: "eur"
  timezone: "Europe/Berlin"
  trial_days: 14

logging:
  level: debug
  format: console
`

	cfg := writeAndLoad(t, content)

	if cfg.Server.Addr() != "127.0.0.1:9090" {
		t.Errorf("Addr = %s, want 127.0.0.1:9090", cfg.Server.Addr())
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want 15s", cfg.Server.ReadTimeout)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://home.example" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Database.DSN != ":memory:" {
		t.Errorf("DSN = %s, want :memory:", cfg.Database.DSN)
	}

	fee, err := cfg.Billing.Fee()
	if err != nil {
		t.Fatalf("Fee error: %v", err)
	}
	if !fee.Equal(decimal.RequireFromString("7.5")) {
		t.Errorf("Fee = %s, want 7.5", fee)
	}
	if cfg.Billing.Currency != "EUR" {
		t.Errorf("Currency = %s, want EUR", cfg.Billing.Currency)
	}
	loc, err := cfg.Billing.Location()
	if err != nil {
		t.Fatalf("Location error: %v", err)
	}
	if loc.String() != "Europe/Berlin" {
		t.Errorf("Location = %s, want Europe/Berlin", loc)
	}
	if cfg.Billing.TrialDays != 14 {
		t.Errorf("TrialDays = %d, want 14", cfg.Billing.TrialDays)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Format = %s, want console", cfg.Logging.Format)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := writeAndLoad(t, "logging:\n  level: warn\n")

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8080 {
		t.Errorf("server = %s, want 0.0.0.0:8080", cfg.Server.Addr())
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "homekeep.db" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Billing.PlatformFee != "5.00" {
		t.Errorf("PlatformFee = %s, want 5.00", cfg.Billing.PlatformFee)
	}
	if cfg.Billing.Timezone != "UTC" || cfg.Billing.Currency != "USD" {
		t.Errorf("billing = %+v", cfg.Billing)
	}
	if cfg.Billing.TrialDays != 7 {
		t.Errorf("TrialDays = %d, want 7", cfg.Billing.TrialDays)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
	if !cfg.OpenAPI.Enabled {
		t.Error("openapi should default to enabled")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %s, want warn", cfg.Logging.Level)
	}
}

func TestLoad_ExplicitZeroTrialDays(t *testing.T) {
	cfg := writeAndLoad(t, "billing:\n  trial_days: 0\n")
	if cfg.Billing.TrialDays != 0 {
		t.Errorf("TrialDays = %d, want 0", cfg.Billing.TrialDays)
	}
}

func TestLoad_DisableMetrics(t *testing.T) {
	cfg := writeAndLoad(t, "metrics:\n  enabled: false\nopenapi:\n  enabled: false\n")
	if cfg.Metrics.Enabled || cfg.OpenAPI.Enabled {
		t.Error("metrics and openapi should be disabled")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"negative fee", "billing:\n  platform_fee: \"-1\"\n", "platform_fee"},
		{"non-numeric fee", "billing:\n  platform_fee: \"five\"\n", "platform_fee"},
		{"unknown timezone", "billing:\n  timezone: Mars/Olympus\n", "timezone"},
		{"negative trial days", "billing:\n  trial_days: -2\n", "trial_days"},
		{"unsupported driver", "database:\n  driver: postgres\n", "database.driver"},
		{"bad log level", "logging:\n  level: loud\n", "logging.level"},
		{"bad log format", "logging:\n  format: xml\n", "logging.format"},
		{"bad port", "server:\n  port: 70000\n", "server.port"},
		{"bad metrics path", "metrics:\n  path: metrics\n", "metrics.path"},
		{"bad yaml", "server: [\n", "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOMEKEEP_SERVER_PORT", "9999")
	t.Setenv("HOMEKEEP_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("HOMEKEEP_DATABASE_DSN", "/tmp/hk.db")
	t.Setenv("HOMEKEEP_BILLING_PLATFORM_FEE", "3.25")
	t.Setenv("HOMEKEEP_BILLING_TIMEZONE", "America/New_York")
	t.Setenv("HOMEKEEP_BILLING_TRIAL_DAYS", "30")
	t.Setenv("HOMEKEEP_LOG_LEVEL", "error")
	t.Setenv("HOMEKEEP_METRICS_ENABLED", "no")

	cfg := writeAndLoad(t, "server:\n  port: 8081\nbilling:\n  platform_fee: \"5\"\n")

	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Database.DSN != "/tmp/hk.db" {
		t.Errorf("DSN = %s, want /tmp/hk.db", cfg.Database.DSN)
	}
	if cfg.Billing.PlatformFee != "3.25" {
		t.Errorf("PlatformFee = %s, want 3.25", cfg.Billing.PlatformFee)
	}
	if cfg.Billing.Timezone != "America/New_York" {
		t.Errorf("Timezone = %s", cfg.Billing.Timezone)
	}
	if cfg.Billing.TrialDays != 30 {
		t.Errorf("TrialDays = %d, want 30", cfg.Billing.TrialDays)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Level = %s, want error", cfg.Logging.Level)
	}
	if cfg.Metrics.Enabled {
		t.Error("metrics should be disabled by env")
	}
}

func TestLoad_ExpandEnv(t *testing.T) {
	t.Setenv("HK_TEST_FEE", "9.99")

	cfg := writeAndLoad(t, "billing:\n  platform_fee: \"${HK_TEST_FEE}\"\n")
	if cfg.Billing.PlatformFee != "9.99" {
		t.Errorf("PlatformFee = %s, want 9.99", cfg.Billing.PlatformFee)
	}
}

func TestLoadWithFallback(t *testing.T) {
	t.Setenv("HOMEKEEP_BILLING_PLATFORM_FEE", "1")

	cfg, err := config.LoadWithFallback(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFallback error: %v", err)
	}
	if cfg.Billing.PlatformFee != "1" {
		t.Errorf("PlatformFee = %s, want 1", cfg.Billing.PlatformFee)
	}

	path := writeConfig(t, "server:\n  port: 7000\n")
	cfg, err = config.LoadWithFallback(path)
	if err != nil {
		t.Fatalf("LoadWithFallback error: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Port = %d, want 7000", cfg.Server.Port)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Billing.PlatformFee = "12.00"
	cfg.Server.WriteTimeout = 2 * time.Minute

	path := filepath.Join(t.TempDir(), "homekeep.yaml")
	if err := config.Save(&cfg, path); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file not written: %v", err)
	}

	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Billing.PlatformFee != "12.00" {
		t.Errorf("PlatformFee = %s, want 12.00", loaded.Billing.PlatformFee)
	}
	if loaded.Server.WriteTimeout != 2*time.Minute {
		t.Errorf("WriteTimeout = %v, want 2m", loaded.Server.WriteTimeout)
	}
}
