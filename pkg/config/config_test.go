package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "test-key")
	t.Setenv("POSTGRES_USER", "imdb")
	t.Setenv("POSTGRES_DB", "imdb")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "data/tmdb_search_results.db", cfg.CandidateCache)
	assert.Equal(t, 1975, cfg.CutoffYear)
	assert.Equal(t, 0.0, cfg.MinMatchScore)
	assert.Equal(t, 39, cfg.TMDB.Threshold)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Equal(t, DriverPostgres, cfg.Catalogue.Driver)
}

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("POSTGRES_USER", "imdb")
	t.Setenv("POSTGRES_DB", "imdb")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CATALOGUE_DRIVER", "oracle")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidateRejectsBadScore(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MIN_MATCH_SCORE", "1.5")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigROIOrdering(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BREAK_EVEN_ROI", "9")

	_, err := LoadConfig()
	assert.Error(t, err)
}
