package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"moviefuse/pkg/resolve"
	"moviefuse/pkg/table"
	"moviefuse/pkg/tmdb"
)

type fakeAPI struct {
	details map[int64]*tmdb.Detail
	calls   int
}

func (f *fakeAPI) SearchMovie(ctx context.Context, query string) ([]tmdb.Result, int64, error) {
	panic("remote enricher must not search")
}

func (f *fakeAPI) MovieDetails(ctx context.Context, movieID int64) (*tmdb.Detail, int64, error) {
	f.calls++
	return f.details[movieID], 1700000000, nil
}

type fakeCache struct {
	lists map[int64][]tmdb.Result
}

func (f *fakeCache) Lookup(ctx context.Context, movieID int64) ([]tmdb.Result, bool, error) {
	results, ok := f.lists[movieID]
	return results, ok, nil
}

func testLimiter() *tmdb.Limiter {
	return tmdb.NewLimiter(39, 3*time.Second, zap.NewNop(),
		tmdb.WithSleeper(func(context.Context, time.Duration) error { return nil }))
}

func newWorkingTable(ids []int64, titles map[int64]string, years map[int64]int64) *table.Table {
	t := table.New(ids)
	titleCells := make(map[int64]table.Cell, len(titles))
	for id, title := range titles {
		titleCells[id] = table.String(title)
	}
	yearCells := make(map[int64]table.Cell, len(years))
	for id, year := range years {
		yearCells[id] = table.Int(year)
	}
	t.SetColumn("title", titleCells)
	t.SetColumn("production_year", yearCells)
	return t
}

func TestEnrichUncachedRecordsGetAllNulls(t *testing.T) {
	tbl := newWorkingTable([]int64{1, 2},
		map[int64]string{1: "Heat", 2: "Big"},
		map[int64]int64{1: 1995, 2: 1988})

	api := &fakeAPI{details: map[int64]*tmdb.Detail{}}
	r := NewRemote(api, testLimiter(), &fakeCache{lists: map[int64][]tmdb.Result{}}, resolve.Resolver{}, zap.NewNop())
	_, err := r.Enrich(context.Background(), tbl)
	require.NoError(t, err)

	for _, id := range []int64{1, 2} {
		for _, col := range []string{ColBudget, ColRevenue, ColROI, ColTMDBRating, ColIMDBID} {
			assert.True(t, tbl.Cell(id, col).IsNull(), "id %d column %s", id, col)
		}
	}
	assert.Zero(t, api.calls)
}

func TestEnrichComputesROI(t *testing.T) {
	tbl := newWorkingTable([]int64{1}, map[int64]string{1: "Heat"}, map[int64]int64{1: 1995})

	cache := &fakeCache{lists: map[int64][]tmdb.Result{
		1: {{ID: 949, Title: "Heat", ReleaseDate: "1995-12-15"}},
	}}
	api := &fakeAPI{details: map[int64]*tmdb.Detail{
		949: {Budget: 100, Revenue: 250, VoteAverage: 7.9, IMDBID: "tt0113277"},
	}}

	r := NewRemote(api, testLimiter(), cache, resolve.Resolver{}, zap.NewNop())
	_, err := r.Enrich(context.Background(), tbl)
	require.NoError(t, err)

	roi, ok := tbl.Cell(1, ColROI).Float()
	require.True(t, ok)
	assert.Equal(t, 2.5, roi)
	assert.Equal(t, "tt0113277", tbl.Cell(1, ColIMDBID).Value())
	assert.Equal(t, 1, api.calls)
}

func TestEnrichZeroBudgetMeansNullROI(t *testing.T) {
	tbl := newWorkingTable([]int64{1}, map[int64]string{1: "Heat"}, map[int64]int64{1: 1995})

	cache := &fakeCache{lists: map[int64][]tmdb.Result{
		1: {{ID: 949, Title: "Heat", ReleaseDate: "1995-12-15"}},
	}}
	api := &fakeAPI{details: map[int64]*tmdb.Detail{
		949: {Budget: 0, Revenue: 250, VoteAverage: 6.0},
	}}

	r := NewRemote(api, testLimiter(), cache, resolve.Resolver{}, zap.NewNop())
	_, err := r.Enrich(context.Background(), tbl)
	require.NoError(t, err)

	assert.True(t, tbl.Cell(1, ColBudget).IsNull())
	assert.True(t, tbl.Cell(1, ColROI).IsNull())
	assert.False(t, tbl.Cell(1, ColRevenue).IsNull())
	assert.True(t, tbl.Cell(1, ColIMDBID).IsNull())
}

func TestEnrichNilDetailLeavesNulls(t *testing.T) {
	tbl := newWorkingTable([]int64{1}, map[int64]string{1: "Heat"}, map[int64]int64{1: 1995})

	cache := &fakeCache{lists: map[int64][]tmdb.Result{
		1: {{ID: 949, Title: "Heat", ReleaseDate: "1995-12-15"}},
	}}
	api := &fakeAPI{details: map[int64]*tmdb.Detail{}} // 949 absent -> nil detail

	r := NewRemote(api, testLimiter(), cache, resolve.Resolver{}, zap.NewNop())
	_, err := r.Enrich(context.Background(), tbl)
	require.NoError(t, err)

	for _, col := range []string{ColBudget, ColRevenue, ColROI, ColTMDBRating, ColIMDBID} {
		assert.True(t, tbl.Cell(1, col).IsNull(), "column %s", col)
	}
}

func TestEnrichNeverChangesRowSet(t *testing.T) {
	tbl := newWorkingTable([]int64{1, 2, 3},
		map[int64]string{1: "A", 2: "B", 3: "C"},
		map[int64]int64{1: 2000, 2: 2001, 3: 2002})
	before := tbl.IDs()

	cache := &fakeCache{lists: map[int64][]tmdb.Result{
		1: {{ID: 5, Title: "A", ReleaseDate: "2000-01-01"}},
	}}
	api := &fakeAPI{details: map[int64]*tmdb.Detail{5: {Budget: 10, Revenue: 20}}}

	r := NewRemote(api, testLimiter(), cache, resolve.Resolver{}, zap.NewNop())
	_, err := r.Enrich(context.Background(), tbl)
	require.NoError(t, err)

	assert.Equal(t, before, tbl.IDs())
}
