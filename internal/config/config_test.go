package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 24*time.Hour, cfg.Cache.DrugTTL)
	assert.Equal(t, time.Hour, cfg.Cache.SearchTTL)
	assert.Equal(t, int64(100), cfg.RateLimit.BasicLimit)
	assert.Equal(t, int64(1000), cfg.RateLimit.ProfessionalLimit)
	assert.Equal(t, 30*time.Second, cfg.External.Timeout)
	assert.Equal(t, "https://eutils.ncbi.nlm.nih.gov/entrez/eutils", cfg.External.PubMed.BaseURL)
	assert.Equal(t, 3, cfg.External.PubMed.MaxConcurrent)
	assert.Equal(t, 5, cfg.External.ClinicalTrials.MaxConcurrent)
	assert.Equal(t, 2, cfg.External.DrugBank.MaxConcurrent)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ONCO_SERVER_PORT", "9090")
	t.Setenv("ONCO_ENVIRONMENT", "production")
	t.Setenv("ONCO_CACHE_URL", "redis://localhost:6379/0")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "redis://localhost:6379/0", cfg.Cache.URL)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
environment: staging
server:
  port: 7070
corpus:
  dir: /srv/oncopurpose/data
rate_limit:
  basic_limit: 50
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/srv/oncopurpose/data", cfg.Corpus.Dir)
	assert.Equal(t, int64(50), cfg.RateLimit.BasicLimit)
	// Untouched keys keep defaults.
	assert.Equal(t, int64(1000), cfg.RateLimit.ProfessionalLimit)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfiguration, apperrors.GetCode(err))
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg.Server.Port = 8080
	cfg.Environment = "qa"
	assert.Error(t, cfg.Validate())

	cfg.Environment = "production"
	cfg.RateLimit.Window = 0
	assert.Error(t, cfg.Validate())

	cfg.RateLimit.Enabled = false
	assert.NoError(t, cfg.Validate())
}
