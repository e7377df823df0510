package enrich

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"moviefuse/pkg/catalogue"
	"moviefuse/pkg/table"
)

// collapseDelimiter joins the rows of a one-to-many attribute family into a
// single cell value.
const collapseDelimiter = " : "

type familyKind int

const (
	// oneToMany families collapse all rows per id, in store order, with no
	// deduplication.
	oneToMany familyKind = iota
	// oneToOne families keep the first row the store returns per id.
	oneToOne
)

// family describes one attribute enrichment operation against the catalogue.
type family struct {
	column string
	kind   familyKind
	// keep filters rows before grouping; nil keeps everything.
	keep  func(catalogue.Row) bool
	fetch func(context.Context, catalogue.Source, []int64) ([]catalogue.Row, error)
}

// families lists the attribute operations in their fixed execution order.
func families() []family {
	return []family{
		{column: "genres", kind: oneToMany, fetch: func(ctx context.Context, s catalogue.Source, ids []int64) ([]catalogue.Row, error) {
			return s.MovieInfo(ctx, ids, catalogue.InfoTypeGenres)
		}},
		{column: "directors", kind: oneToMany, fetch: func(ctx context.Context, s catalogue.Source, ids []int64) ([]catalogue.Row, error) {
			return s.CastNames(ctx, ids, catalogue.RoleDirector)
		}},
		{column: "actors", kind: oneToMany, fetch: func(ctx context.Context, s catalogue.Source, ids []int64) ([]catalogue.Row, error) {
			return s.CastNames(ctx, ids, catalogue.RoleActor, catalogue.RoleActress)
		}},
		{column: "imdb_votes", kind: oneToOne, fetch: func(ctx context.Context, s catalogue.Source, ids []int64) ([]catalogue.Row, error) {
			return s.MovieInfoIdx(ctx, ids, catalogue.IdxInfoTypeVotes)
		}},
		{column: "imdb_rating", kind: oneToOne, fetch: func(ctx context.Context, s catalogue.Source, ids []int64) ([]catalogue.Row, error) {
			return s.MovieInfoIdx(ctx, ids, catalogue.IdxInfoTypeRating)
		}},
		{column: "runtime", kind: oneToOne, keep: runtimeRow, fetch: func(ctx context.Context, s catalogue.Source, ids []int64) ([]catalogue.Row, error) {
			return s.MovieInfo(ctx, ids, catalogue.InfoTypeRuntime)
		}},
		{column: "countries", kind: oneToMany, fetch: func(ctx context.Context, s catalogue.Source, ids []int64) ([]catalogue.Row, error) {
			return s.MovieInfo(ctx, ids, catalogue.InfoTypeCountries)
		}},
		{column: "production_companies", kind: oneToMany, fetch: func(ctx context.Context, s catalogue.Source, ids []int64) ([]catalogue.Row, error) {
			return s.CompanyNames(ctx, ids, catalogue.CompanyTypeProduction)
		}},
		{column: "distributors", kind: oneToMany, fetch: func(ctx context.Context, s catalogue.Source, ids []int64) ([]catalogue.Row, error) {
			return s.CompanyNames(ctx, ids, catalogue.CompanyTypeDistributor)
		}},
		{column: "copyright_holders", kind: oneToMany, fetch: func(ctx context.Context, s catalogue.Source, ids []int64) ([]catalogue.Row, error) {
			return s.MovieInfo(ctx, ids, catalogue.InfoTypeCopyrightHolder)
		}},
		{column: "keywords", kind: oneToMany, fetch: func(ctx context.Context, s catalogue.Source, ids []int64) ([]catalogue.Row, error) {
			return s.Keywords(ctx, ids)
		}},
		{column: "plot", kind: oneToOne, fetch: func(ctx context.Context, s catalogue.Source, ids []int64) ([]catalogue.Row, error) {
			return s.MovieInfo(ctx, ids, catalogue.InfoTypePlot)
		}},
	}
}

// runtimeRow excludes colon-delimited range values ("90:100") and rows with
// a qualifying note, which mark alternate cuts or regional runtimes.
func runtimeRow(row catalogue.Row) bool {
	if strings.Contains(row.Value, ":") {
		return false
	}
	return !row.Note.Valid || row.Note.String == ""
}

// Relational joins catalogue attribute families onto the working table, one
// column per family. Each join is a full replace of any existing column of
// the same name, so re-running the stage is idempotent. Ids absent from a
// family's result simply stay null; collapse order is whatever the store
// returns, which is non-deterministic unless the store guarantees an order.
type Relational struct {
	source catalogue.Source
	logger *zap.Logger
}

// NewRelational creates the relational enrichment stage.
func NewRelational(source catalogue.Source, logger *zap.Logger) *Relational {
	return &Relational{
		source: source,
		logger: logger.Named("relational-enricher"),
	}
}

// Enrich runs every attribute family against the current row set. The row
// count is identical before and after each operation.
func (e *Relational) Enrich(ctx context.Context, t *table.Table) error {
	ids := t.IDs()

	for _, fam := range families() {
		rows, err := fam.fetch(ctx, e.source, ids)
		if err != nil {
			return fmt.Errorf("enrich %s: %w", fam.column, err)
		}

		cells := groupRows(rows, fam)
		t.SetColumn(fam.column, cells)

		e.logger.Debug("Attribute family joined",
			zap.String("column", fam.column),
			zap.Int("rows", len(rows)),
			zap.Int("ids_with_values", len(cells)))
	}

	e.logger.Info("Relational enrichment complete",
		zap.Int("records", len(ids)),
		zap.Int("families", len(families())))
	return nil
}

// groupRows reduces a family's rows to one cell per id: collapsed with the
// fixed delimiter for one-to-many families, first row wins for one-to-one.
func groupRows(rows []catalogue.Row, fam family) map[int64]table.Cell {
	switch fam.kind {
	case oneToOne:
		cells := make(map[int64]table.Cell)
		for _, row := range rows {
			if fam.keep != nil && !fam.keep(row) {
				continue
			}
			if _, ok := cells[row.MovieID]; ok {
				continue
			}
			cells[row.MovieID] = table.String(row.Value)
		}
		return cells
	default:
		var order []int64
		grouped := make(map[int64][]string)
		for _, row := range rows {
			if fam.keep != nil && !fam.keep(row) {
				continue
			}
			if _, ok := grouped[row.MovieID]; !ok {
				order = append(order, row.MovieID)
			}
			grouped[row.MovieID] = append(grouped[row.MovieID], row.Value)
		}
		cells := make(map[int64]table.Cell, len(order))
		for _, id := range order {
			cells[id] = table.String(strings.Join(grouped[id], collapseDelimiter))
		}
		return cells
	}
}
