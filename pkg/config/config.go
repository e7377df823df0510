// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Catalogue store and remote service
	Catalogue *CatalogueConfig
	TMDB      *TMDBConfig

	// Pipeline settings
	DataDir        string // Directory for snapshots and caches
	SnapshotPath   string // Prior enriched snapshot, empty to bootstrap
	CandidateCache string // SQLite candidate-list cache path
	CutoffYear     int    // Bootstrap eligibility: production_year > cutoff
	MinMatchScore  float64
	DatasetSeed    int64 // Shuffle seed for the training subset
	SuccessROI     float64
	BreakEvenROI   float64

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		// Default values
		DataDir:        getEnv("DATA_DIR", "data"),
		SnapshotPath:   getEnv("SNAPSHOT_PATH", ""),
		CandidateCache: getEnv("CANDIDATE_CACHE_PATH", ""),
		CutoffYear:     getEnvAsInt("CUTOFF_YEAR", 1975),
		MinMatchScore:  getEnvAsFloat("MIN_MATCH_SCORE", 0),
		DatasetSeed:    int64(getEnvAsInt("DATASET_SEED", 1)),
		SuccessROI:     getEnvAsFloat("SUCCESS_ROI", 7),
		BreakEvenROI:   getEnvAsFloat("BREAK_EVEN_ROI", 2),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}

	if cfg.CandidateCache == "" {
		cfg.CandidateCache = cfg.DataDir + "/tmdb_search_results.db"
	}

	catConfig, err := LoadCatalogueConfig()
	if err != nil {
		return nil, errors.New("failed to load catalogue configuration: " + err.Error())
	}
	cfg.Catalogue = catConfig

	tmdbConfig, err := LoadTMDBConfig()
	if err != nil {
		return nil, errors.New("failed to load TMDB configuration: " + err.Error())
	}
	cfg.TMDB = tmdbConfig

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.Catalogue == nil {
		return errors.New("catalogue configuration is required")
	}

	if c.TMDB == nil {
		return errors.New("TMDB configuration is required")
	}

	if c.DataDir == "" {
		return errors.New("data directory is required")
	}

	if c.CutoffYear <= 0 {
		return errors.New("cutoff year must be positive")
	}

	if c.MinMatchScore < 0 || c.MinMatchScore > 1 {
		return errors.New("minimum match score must be within [0, 1]")
	}

	if c.BreakEvenROI >= c.SuccessROI {
		return errors.New("break-even ROI must be below success ROI")
	}

	return nil
}

// TMDBConfig holds remote metadata service parameters
type TMDBConfig struct {
	APIKey  string
	BaseURL string

	// Rate window bookkeeping: the service allows 40 calls per 10 second
	// window; waits trigger after Threshold calls and pad by Buffer.
	Threshold int
	Buffer    time.Duration
}

// LoadTMDBConfig loads TMDB configuration from environment variables
func LoadTMDBConfig() (*TMDBConfig, error) {
	apiKey := os.Getenv("TMDB_API_KEY")
	if apiKey == "" {
		return nil, errors.New("TMDB_API_KEY environment variable is required")
	}

	return &TMDBConfig{
		APIKey:    apiKey,
		BaseURL:   getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		Threshold: getEnvAsInt("TMDB_RATE_THRESHOLD", 39),
		Buffer:    time.Duration(getEnvAsInt("TMDB_RATE_BUFFER_SECONDS", 3)) * time.Second,
	}, nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
