package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.DBDriver, "auto resolves to sqlite without a DSN")
	assert.Equal(t, "mindcare.db", cfg.SQLitePath)
	assert.Equal(t, "bd", cfg.DefaultRegion)
	assert.False(t, cfg.StrictTriage)
	assert.Equal(t, 10, cfg.HealthIntervalSeconds)
}

func TestNewFromEnvironment(t *testing.T) {
	t.Setenv("MINDCARE_ENVIRONMENT", "production")
	t.Setenv("MINDCARE_HTTP_PORT", "9090")
	t.Setenv("MINDCARE_POSTGRES_DSN", "postgres://localhost:5432/mindcare")
	t.Setenv("MINDCARE_DEFAULT_REGION", "us")
	t.Setenv("MINDCARE_STRICT_TRIAGE", "true")

	cfg, err := New()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":9090", cfg.GetHTTPAddr())
	assert.Equal(t, "postgres", cfg.DBDriver, "auto resolves to postgres with a DSN")
	assert.Equal(t, "us", cfg.DefaultRegion)
	assert.True(t, cfg.StrictTriage)
}

func TestResolveDefaultsRejectsUnknownDriver(t *testing.T) {
	cfg := NewForTesting()
	cfg.DBDriver = "oracle"
	assert.Error(t, cfg.ResolveDefaults())
}

func TestResolveDefaultsPostgresRequiresDSN(t *testing.T) {
	cfg := NewForTesting()
	cfg.DBDriver = "postgres"
	cfg.PostgresDSN = ""
	assert.Error(t, cfg.ResolveDefaults())
}

func TestResolveDefaultsRejectsEmptyRegion(t *testing.T) {
	cfg := NewForTesting()
	cfg.DefaultRegion = ""
	assert.Error(t, cfg.ResolveDefaults())
}

func TestNewForTesting(t *testing.T) {
	cfg := NewForTesting()
	assert.True(t, cfg.IsTesting())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "sqlite", cfg.DBDriver)
}
