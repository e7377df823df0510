package enrich

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"moviefuse/pkg/catalogue"
	"moviefuse/pkg/table"
)

// fakeSource serves canned rows per (relation, code) pair.
type fakeSource struct {
	movieInfo    map[int][]catalogue.Row
	movieInfoIdx map[int][]catalogue.Row
	cast         map[int][]catalogue.Row // keyed by first role id
	companies    map[int][]catalogue.Row
	keywords     []catalogue.Row
}

func (f *fakeSource) BootstrapIDs(ctx context.Context, cutoffYear int) ([]int64, error) {
	return nil, nil
}

func (f *fakeSource) Titles(ctx context.Context, ids []int64) ([]catalogue.TitleRow, error) {
	return nil, nil
}

func (f *fakeSource) MovieInfo(ctx context.Context, ids []int64, infoType int) ([]catalogue.Row, error) {
	return f.movieInfo[infoType], nil
}

func (f *fakeSource) MovieInfoIdx(ctx context.Context, ids []int64, infoType int) ([]catalogue.Row, error) {
	return f.movieInfoIdx[infoType], nil
}

func (f *fakeSource) CastNames(ctx context.Context, ids []int64, roleIDs ...int) ([]catalogue.Row, error) {
	return f.cast[roleIDs[0]], nil
}

func (f *fakeSource) CompanyNames(ctx context.Context, ids []int64, companyType int) ([]catalogue.Row, error) {
	return f.companies[companyType], nil
}

func (f *fakeSource) Keywords(ctx context.Context, ids []int64) ([]catalogue.Row, error) {
	return f.keywords, nil
}

func note(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func TestEnrichCollapsesWithoutDedup(t *testing.T) {
	tbl := table.New([]int64{42})
	source := &fakeSource{
		movieInfo: map[int][]catalogue.Row{
			catalogue.InfoTypeGenres: {
				{MovieID: 42, Value: "Drama"},
				{MovieID: 42, Value: "Thriller"},
				{MovieID: 42, Value: "Drama"},
			},
		},
	}

	e := NewRelational(source, zap.NewNop())
	require.NoError(t, e.Enrich(context.Background(), tbl))

	assert.Equal(t, "Drama : Thriller : Drama", tbl.Cell(42, "genres").Value())
}

func TestEnrichRuntimeFiltersColonRanges(t *testing.T) {
	tbl := table.New([]int64{42})
	source := &fakeSource{
		movieInfo: map[int][]catalogue.Row{
			catalogue.InfoTypeRuntime: {
				{MovieID: 42, Value: "90:100"},
				{MovieID: 42, Value: "120"},
			},
		},
	}

	e := NewRelational(source, zap.NewNop())
	require.NoError(t, e.Enrich(context.Background(), tbl))

	assert.Equal(t, "120", tbl.Cell(42, "runtime").Value())
}

func TestEnrichRuntimeFiltersQualifyingNotes(t *testing.T) {
	tbl := table.New([]int64{42})
	source := &fakeSource{
		movieInfo: map[int][]catalogue.Row{
			catalogue.InfoTypeRuntime: {
				{MovieID: 42, Value: "95", Note: note("(director's cut)")},
				{MovieID: 42, Value: "88"},
			},
		},
	}

	e := NewRelational(source, zap.NewNop())
	require.NoError(t, e.Enrich(context.Background(), tbl))

	assert.Equal(t, "88", tbl.Cell(42, "runtime").Value())
}

func TestEnrichOneToOneFirstRowWins(t *testing.T) {
	tbl := table.New([]int64{42})
	source := &fakeSource{
		movieInfo: map[int][]catalogue.Row{
			catalogue.InfoTypePlot: {
				{MovieID: 42, Value: "First plot."},
				{MovieID: 42, Value: "Second plot."},
			},
		},
	}

	e := NewRelational(source, zap.NewNop())
	require.NoError(t, e.Enrich(context.Background(), tbl))

	assert.Equal(t, "First plot.", tbl.Cell(42, "plot").Value())
}

func TestEnrichMissingIDsStayNull(t *testing.T) {
	tbl := table.New([]int64{1, 2})
	source := &fakeSource{
		movieInfo: map[int][]catalogue.Row{
			catalogue.InfoTypeGenres: {{MovieID: 1, Value: "Drama"}},
		},
	}

	e := NewRelational(source, zap.NewNop())
	require.NoError(t, e.Enrich(context.Background(), tbl))

	assert.Equal(t, "Drama", tbl.Cell(1, "genres").Value())
	assert.True(t, tbl.Cell(2, "genres").IsNull())
}

func TestEnrichReplacesExistingColumns(t *testing.T) {
	tbl := table.New([]int64{1})
	tbl.SetColumn("genres", map[int64]table.Cell{1: table.String("Stale")})
	source := &fakeSource{
		movieInfo: map[int][]catalogue.Row{
			catalogue.InfoTypeGenres: {{MovieID: 1, Value: "Crime"}},
		},
	}

	e := NewRelational(source, zap.NewNop())
	require.NoError(t, e.Enrich(context.Background(), tbl))

	assert.Equal(t, "Crime", tbl.Cell(1, "genres").Value())
}

func TestEnrichNeverChangesRowCount(t *testing.T) {
	tbl := table.New([]int64{1, 2, 3})
	source := &fakeSource{
		cast: map[int][]catalogue.Row{
			catalogue.RoleDirector: {{MovieID: 1, Value: "Mann"}},
			catalogue.RoleActor:    {{MovieID: 2, Value: "De Niro"}, {MovieID: 2, Value: "Pacino"}},
		},
		companies: map[int][]catalogue.Row{
			catalogue.CompanyTypeProduction: {{MovieID: 3, Value: "Regency"}},
		},
	}
	before := tbl.Len()

	e := NewRelational(source, zap.NewNop())
	require.NoError(t, e.Enrich(context.Background(), tbl))

	assert.Equal(t, before, tbl.Len())
	assert.Equal(t, "De Niro : Pacino", tbl.Cell(2, "actors").Value())
	assert.Equal(t, "Mann", tbl.Cell(1, "directors").Value())
	assert.Equal(t, "Regency", tbl.Cell(3, "production_companies").Value())
}
