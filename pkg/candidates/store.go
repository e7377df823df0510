// Package candidates persists raw remote search results per catalogue id,
// so that an interrupted pipeline run can resume without repeating its
// rate-limited searches.
package candidates

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"moviefuse/pkg/tmdb"
)

// Store manages the candidate-list cache backed by SQLite. Empty candidate
// lists are cached too: a cached empty list and an uncached id both resolve
// unmatched downstream, but the former costs no further network calls.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS search_results (
    movie_id   INTEGER PRIMARY KEY,
    results    TEXT NOT NULL,
    fetched_at TEXT NOT NULL
)`

// Open initializes or connects to the cache database.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("candidate cache path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create search_results table: %w", err)
	}

	return &Store{
		db:     db,
		path:   path,
		logger: logger.Named("candidate-cache"),
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Lookup returns the cached candidate list for a catalogue id. The second
// return reports whether the id has been searched at all; a cached empty
// list returns (nil, true, nil).
func (s *Store) Lookup(ctx context.Context, movieID int64) ([]tmdb.Result, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT results FROM search_results WHERE movie_id = ?`, movieID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup candidates for %d: %w", movieID, err)
	}

	var results []tmdb.Result
	if err := json.Unmarshal([]byte(payload), &results); err != nil {
		return nil, false, fmt.Errorf("decode cached candidates for %d: %w", movieID, err)
	}
	return results, true, nil
}

// Put stores the raw candidate list for a catalogue id, replacing any
// previous entry.
func (s *Store) Put(ctx context.Context, movieID int64, results []tmdb.Result) error {
	if results == nil {
		results = []tmdb.Result{}
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode candidates for %d: %w", movieID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO search_results (movie_id, results, fetched_at) VALUES (?, ?, ?)`,
		movieID, string(payload), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store candidates for %d: %w", movieID, err)
	}

	s.logger.Debug("Cached search results",
		zap.Int64("movie_id", movieID),
		zap.Int("candidates", len(results)))
	return nil
}

// Count returns the number of ids with a cached candidate list.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_results`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count cached candidates: %w", err)
	}
	return count, nil
}
