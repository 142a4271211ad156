package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://serpapi.com", cfg.Serp.BaseURL)
	assert.Equal(t, 2, cfg.Serp.Pages)
	assert.Equal(t, "rerank-v3.5", cfg.Cohere.Model)
	assert.Equal(t, 40, cfg.Discovery.MaxCandidates)
	assert.Equal(t, 5, cfg.Discovery.MaxFollowLinks)
	assert.Equal(t, 8, cfg.Discovery.FetchConcurrency)
	assert.Equal(t, 30, cfg.Render.PageTimeoutSecs)
	assert.True(t, cfg.Render.Browser)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SUPPLIER_SERVER_PORT", "9090")
	t.Setenv("SUPPLIER_SERP_KEY", "test-key")
	t.Setenv("SUPPLIER_DISCOVERY_MAX_CANDIDATES", "20")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "test-key", cfg.Serp.Key)
	assert.Equal(t, 20, cfg.Discovery.MaxCandidates)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level", Format: "json"})
	assert.Error(t, err)
}
