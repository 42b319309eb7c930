package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_DemoModeDefaults(t *testing.T) {
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
reporting:
  demo_mode: true
workers:
  generate-health-dept-report:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.True(t, cfg.Reporting.DemoMode)
	assert.Equal(t, 12, cfg.Reporting.TrendPeriods)
	assert.Equal(t, "report-history", cfg.Reporting.HistoryIndex)
	assert.Equal(t, 90, cfg.Reporting.Thresholds.CertExpiringSoonDays)
	assert.Equal(t, 30, cfg.Reporting.Thresholds.VendorExpiringDays)
	assert.Equal(t, 30, cfg.Reporting.Thresholds.FireDueSoonDays)
	assert.Equal(t, 30, cfg.Reporting.Thresholds.DocumentLookaheadDays)
	assert.Equal(t, ":8080", cfg.Server.Address)

	wcfg := GetWorkerConfig(cfg, "generate-health-dept-report")
	assert.True(t, wcfg.Enabled)
	assert.Equal(t, 5, wcfg.MaxJobsActive)
	assert.Equal(t, 30000, wcfg.Timeout)
	assert.Equal(t, 3, wcfg.MaxRetries)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("EVIDLY_TEST_PG_PASSWORD", "s3cret")
	path := writeConfig(t, `
camunda:
  broker_address: zeebe:26500
database:
  postgres:
    host: db
    database: evidly
    user: evidly
    password: ${EVIDLY_TEST_PG_PASSWORD}
  elasticsearch:
    addresses: ["http://es:9200"]
  redis:
    address: redis:6379
reporting:
  thresholds:
    cert_expiring_soon_days: 60
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Equal(t, "http://es:9200", cfg.Database.Elasticsearch.GetURL())
	assert.Equal(t, 60, cfg.Reporting.Thresholds.CertExpiringSoonDays)
	assert.Contains(t, cfg.Database.Postgres.GetDSN(), "port=5432")
	assert.Contains(t, cfg.Database.Postgres.GetDSN(), "sslmode=disable")
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "broker address required",
			body:    "reporting:\n  demo_mode: true\n",
			wantErr: "camunda.broker_address is required",
		},
		{
			name:    "live mode needs postgres",
			body:    "camunda:\n  broker_address: x\n",
			wantErr: "database.postgres.host is required",
		},
		{
			name:    "negative threshold",
			body:    "camunda:\n  broker_address: x\nreporting:\n  demo_mode: true\n  thresholds:\n    vendor_expiring_days: -1\n",
			wantErr: "reporting.thresholds must not be negative",
		},
		{
			name:    "trend periods bounded",
			body:    "camunda:\n  broker_address: x\nreporting:\n  demo_mode: true\n  trend_periods: 60\n",
			wantErr: "reporting.trend_periods must be between 1 and 52",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestWorkerHelpers(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"detect-missing-documents": {Enabled: false, Timeout: 1500},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "detect-missing-documents"))
	assert.True(t, IsWorkerEnabled(cfg, "list-report-history"))
	assert.Equal(t, 1500*time.Millisecond, GetDuration(GetWorkerConfig(cfg, "detect-missing-documents").Timeout))
}
