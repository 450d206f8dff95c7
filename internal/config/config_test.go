package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, 5.0, cfg.Budget.DailyLimitUSD)

	assert.Equal(t, "claude", cfg.Extractor.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Extractor.DefaultModel)
	assert.Equal(t, "gemini", cfg.Scorer.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.Scorer.DefaultModel)
	assert.Less(t, cfg.Scorer.InputPerMillion, cfg.Extractor.InputPerMillion,
		"the scoring model is priced below the extraction model")

	assert.Equal(t, int64(20), cfg.Upload.MaxFileSizeMB)
	assert.False(t, cfg.S3.ArchiveEnabled())
	assert.NotEmpty(t, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BILLSCAN_BUDGET_DAILY_LIMIT_USD", "12.5")
	t.Setenv("BILLSCAN_EXTRACTOR_API_KEY", "sk-test")
	t.Setenv("BILLSCAN_SCORER_DEFAULT_MODEL", "gemini-2.0-pro")
	t.Setenv("BILLSCAN_S3_BUCKET", "billscan-archive")
	t.Setenv("BILLSCAN_CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12.5, cfg.Budget.DailyLimitUSD)
	assert.Equal(t, "sk-test", cfg.Extractor.APIKey)
	assert.Equal(t, "gemini-2.0-pro", cfg.Scorer.DefaultModel)
	assert.True(t, cfg.S3.ArchiveEnabled())
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PlatformPortFallback(t *testing.T) {
	t.Setenv("PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Port)

	// Explicit BILLSCAN_SERVER_PORT wins over the platform variable.
	t.Setenv("BILLSCAN_SERVER_PORT", ":7070")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Port)
}
