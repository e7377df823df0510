// pkg/catalogue/source.go
package catalogue

import (
	"context"
	"database/sql"
)

// Attribute filter codes, as enumerated by the catalogue's info_type,
// role_type and company_type tables. These are a fixed contract with the
// IMDb-style schema, not configuration.
const (
	InfoTypeRuntime         = 1
	InfoTypeGenres          = 3
	InfoTypeCountries       = 8
	InfoTypePlot            = 98
	InfoTypeCopyrightHolder = 103
	InfoTypePlotPresence    = 107

	IdxInfoTypeVotes  = 100
	IdxInfoTypeRating = 101

	RoleActor    = 1
	RoleActress  = 2
	RoleDirector = 8

	CompanyTypeDistributor = 1
	CompanyTypeProduction  = 2
)

// Row is a single (movie id, value) result from an attribute query. Note is
// populated only by movie_info queries; callers that filter on qualifying
// notes (runtime) inspect it, everyone else ignores it.
type Row struct {
	MovieID int64          `db:"movie_id"`
	Value   string         `db:"value"`
	Note    sql.NullString `db:"note"`
}

// TitleRow is a minimal catalogue record used to bootstrap the working table
type TitleRow struct {
	ID             int64         `db:"id"`
	Title          string        `db:"title"`
	ProductionYear sql.NullInt64 `db:"production_year"`
}

// Source is the read capability the enrichment stages need from the
// catalogue. All queries are parameterized over a set of movie ids plus the
// fixed filter codes above; implementations must never interpolate values
// into SQL text.
type Source interface {
	// BootstrapIDs returns the ids of feature films newer than the cutoff
	// year that carry a plot attribute
	BootstrapIDs(ctx context.Context, cutoffYear int) ([]int64, error)

	// Titles returns id, title and production year for the given ids
	Titles(ctx context.Context, ids []int64) ([]TitleRow, error)

	// MovieInfo returns movie_info rows for one info type
	MovieInfo(ctx context.Context, ids []int64, infoType int) ([]Row, error)

	// MovieInfoIdx returns movie_info_idx rows for one info type
	MovieInfoIdx(ctx context.Context, ids []int64, infoType int) ([]Row, error)

	// CastNames returns person names from cast_info for the given role codes
	CastNames(ctx context.Context, ids []int64, roleIDs ...int) ([]Row, error)

	// CompanyNames returns company names for one company type
	CompanyNames(ctx context.Context, ids []int64, companyType int) ([]Row, error)

	// Keywords returns the keyword attributions for the given ids
	Keywords(ctx context.Context, ids []int64) ([]Row, error)
}
