// pkg/catalogue/queries.go
package catalogue

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Store implements Source on top of a catalogue connector. Row order is
// whatever the backend returns; the queries deliberately add no ORDER BY,
// matching the collapse contract documented in pkg/enrich.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
	logger  *zap.Logger
}

var _ Source = (*Store)(nil)

// NewStore creates a catalogue query store over an open connector
func NewStore(conn Connector, queryTimeout time.Duration, logger *zap.Logger) *Store {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Minute
	}
	return &Store{
		db:      conn.DB(),
		timeout: queryTimeout,
		logger:  logger.Named("catalogue-store"),
	}
}

// BootstrapIDs returns the ids of feature films newer than the cutoff year
// that carry a plot attribute
func (s *Store) BootstrapIDs(ctx context.Context, cutoffYear int) ([]int64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := s.db.Rebind(`
		SELECT DISTINCT(title.id)
		FROM title
		JOIN movie_info ON title.id = movie_info.movie_id
		WHERE title.production_year > ?
		  AND title.kind_id = 1
		  AND movie_info.info_type_id = ?`)

	var ids []int64
	if err := s.db.SelectContext(queryCtx, &ids, query, cutoffYear, InfoTypePlotPresence); err != nil {
		return nil, fmt.Errorf("bootstrap query failed: %w", err)
	}

	s.logger.Info("Bootstrapped eligible titles",
		zap.Int("count", len(ids)),
		zap.Int("cutoff_year", cutoffYear))
	return ids, nil
}

// Titles returns id, title and production year for the given ids
func (s *Store) Titles(ctx context.Context, ids []int64) ([]TitleRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, title, production_year
		FROM title
		WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build titles query: %w", err)
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rows []TitleRow
	if err := s.db.SelectContext(queryCtx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("titles query failed: %w", err)
	}
	return rows, nil
}

// MovieInfo returns movie_info rows for one info type
func (s *Store) MovieInfo(ctx context.Context, ids []int64, infoType int) ([]Row, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT movie_id, info AS value, note
		FROM movie_info
		WHERE movie_id IN (?) AND info_type_id = ?`, ids, infoType)
	if err != nil {
		return nil, fmt.Errorf("build movie_info query: %w", err)
	}

	return s.selectRows(ctx, query, args, "movie_info", infoType)
}

// MovieInfoIdx returns movie_info_idx rows for one info type
func (s *Store) MovieInfoIdx(ctx context.Context, ids []int64, infoType int) ([]Row, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT movie_id, info AS value
		FROM movie_info_idx
		WHERE movie_id IN (?) AND info_type_id = ?`, ids, infoType)
	if err != nil {
		return nil, fmt.Errorf("build movie_info_idx query: %w", err)
	}

	return s.selectRows(ctx, query, args, "movie_info_idx", infoType)
}

// CastNames returns person names from cast_info for the given role codes
func (s *Store) CastNames(ctx context.Context, ids []int64, roleIDs ...int) ([]Row, error) {
	if len(ids) == 0 || len(roleIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT cast_info.movie_id AS movie_id, name.name AS value
		FROM cast_info
		JOIN name ON cast_info.person_id = name.id
		WHERE cast_info.movie_id IN (?) AND cast_info.role_id IN (?)`, ids, roleIDs)
	if err != nil {
		return nil, fmt.Errorf("build cast_info query: %w", err)
	}

	return s.selectRows(ctx, query, args, "cast_info", roleIDs[0])
}

// CompanyNames returns company names for one company type
func (s *Store) CompanyNames(ctx context.Context, ids []int64, companyType int) ([]Row, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT movie_companies.movie_id AS movie_id, company_name.name AS value
		FROM movie_companies
		JOIN company_name ON movie_companies.company_id = company_name.id
		WHERE movie_companies.movie_id IN (?) AND movie_companies.company_type_id = ?`, ids, companyType)
	if err != nil {
		return nil, fmt.Errorf("build movie_companies query: %w", err)
	}

	return s.selectRows(ctx, query, args, "movie_companies", companyType)
}

// Keywords returns the keyword attributions for the given ids
func (s *Store) Keywords(ctx context.Context, ids []int64) ([]Row, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT movie_keyword.movie_id AS movie_id, keyword.keyword AS value
		FROM movie_keyword
		JOIN keyword ON movie_keyword.keyword_id = keyword.id
		WHERE movie_keyword.movie_id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build movie_keyword query: %w", err)
	}

	return s.selectRows(ctx, query, args, "movie_keyword", 0)
}

func (s *Store) selectRows(ctx context.Context, query string, args []interface{}, relation string, code int) ([]Row, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rows []Row
	if err := s.db.SelectContext(queryCtx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("%s query failed: %w", relation, err)
	}

	s.logger.Debug("Attribute query complete",
		zap.String("relation", relation),
		zap.Int("filter_code", code),
		zap.Int("rows", len(rows)))
	return rows, nil
}
