// Package enrich implements the two fusion stages that add columns to the
// working table: remote enrichment from the TMDB service and relational
// enrichment from the local catalogue.
package enrich

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"moviefuse/pkg/resolve"
	"moviefuse/pkg/table"
	"moviefuse/pkg/tmdb"
)

// Remote enrichment column names.
const (
	ColBudget     = "budget"
	ColRevenue    = "revenue"
	ColROI        = "roi"
	ColTMDBRating = "tmdb_rating"
	ColIMDBID     = "imdb_id"
)

// CandidateSource supplies the cached candidate list for a catalogue id.
type CandidateSource interface {
	Lookup(ctx context.Context, movieID int64) ([]tmdb.Result, bool, error)
}

// Remote fills budget, revenue, roi, tmdb_rating and imdb_id from the
// remote metadata service, one record at a time. Records with no cached
// candidates or no acceptable match get the null sentinel in all five
// columns; a budget or revenue reported as exactly zero is treated as "not
// provided", so a genuine zero is indistinguishable from missing data.
type Remote struct {
	api      tmdb.API
	limiter  *tmdb.Limiter
	cache    CandidateSource
	resolver resolve.Resolver
	logger   *zap.Logger
}

// NewRemote creates the remote enrichment stage.
func NewRemote(api tmdb.API, limiter *tmdb.Limiter, cache CandidateSource, resolver resolve.Resolver, logger *zap.Logger) *Remote {
	return &Remote{
		api:      api,
		limiter:  limiter,
		cache:    cache,
		resolver: resolver,
		logger:   logger.Named("remote-enricher"),
	}
}

// Enrich resolves each record against its cached candidates and fetches the
// winning candidate's detail through the rate limiter. Only columns are
// added or replaced; the row set never changes. Returns the number of
// detail fetches issued.
func (r *Remote) Enrich(ctx context.Context, t *table.Table) (int, error) {
	budgets := make(map[int64]table.Cell)
	revenues := make(map[int64]table.Cell)
	rois := make(map[int64]table.Cell)
	ratings := make(map[int64]table.Cell)
	imdbIDs := make(map[int64]table.Cell)

	ids := t.IDs()
	total := len(ids)
	fetched := 0
	matched := 0

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return fetched, err
		}

		r.logger.Debug("Remote enrichment progress",
			zap.Int("done", i),
			zap.Int("total", total))

		candidates, cached, err := r.cache.Lookup(ctx, id)
		if err != nil {
			return fetched, fmt.Errorf("lookup candidates for %d: %w", id, err)
		}
		if !cached || len(candidates) == 0 {
			continue // all five columns stay null for this record
		}

		title := t.Cell(id, "title")
		year := t.Cell(id, "production_year")
		match := r.resolver.Resolve(title.Value(), year, candidates)
		if !match.Matched {
			continue
		}

		if err := r.limiter.Await(ctx); err != nil {
			return fetched, fmt.Errorf("await rate budget before detail fetch: %w", err)
		}
		detail, reset, err := r.api.MovieDetails(ctx, match.TMDBID)
		if err != nil {
			return fetched, fmt.Errorf("fetch detail for %d (tmdb %d): %w", id, match.TMDBID, err)
		}
		r.limiter.Record(reset)
		fetched++

		if detail == nil {
			continue
		}
		matched++

		// Zero budget/revenue means "not reported" by policy.
		var budget, revenue float64
		hasBudget := detail.Budget != 0
		hasRevenue := detail.Revenue != 0
		if hasBudget {
			budget = float64(detail.Budget)
			budgets[id] = table.Float(budget)
		}
		if hasRevenue {
			revenue = float64(detail.Revenue)
			revenues[id] = table.Float(revenue)
		}
		if hasBudget && hasRevenue {
			rois[id] = table.Float(revenue / budget)
		}
		ratings[id] = table.Float(detail.VoteAverage)
		if detail.IMDBID != "" {
			imdbIDs[id] = table.String(detail.IMDBID)
		}
	}

	t.SetColumn(ColBudget, budgets)
	t.SetColumn(ColRevenue, revenues)
	t.SetColumn(ColROI, rois)
	t.SetColumn(ColTMDBRating, ratings)
	t.SetColumn(ColIMDBID, imdbIDs)

	r.logger.Info("Remote enrichment complete",
		zap.Int("records", total),
		zap.Int("fetched", fetched),
		zap.Int("matched", matched))
	return fetched, nil
}
