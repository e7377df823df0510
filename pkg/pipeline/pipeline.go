// Package pipeline orchestrates the fusion run: load or bootstrap the
// working table, resolve and cache remote candidates, enrich from the
// remote service and the relational catalogue, and emit a dated snapshot.
// Processing is sequential and single-threaded; the only suspension point
// is the rate-limit wait, and interrupted runs resume through the candidate
// cache and snapshot skip logic.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"moviefuse/pkg/catalogue"
	"moviefuse/pkg/config"
	"moviefuse/pkg/enrich"
	"moviefuse/pkg/resolve"
	"moviefuse/pkg/table"
	"moviefuse/pkg/tmdb"
)

// CandidateCache is the persistence contract for raw search results.
type CandidateCache interface {
	Lookup(ctx context.Context, movieID int64) ([]tmdb.Result, bool, error)
	Put(ctx context.Context, movieID int64, results []tmdb.Result) error
	Count(ctx context.Context) (int, error)
}

// Pipeline wires the fusion stages together for a single run.
type Pipeline struct {
	cfg     *config.Config
	source  catalogue.Source
	api     tmdb.API
	limiter *tmdb.Limiter
	cache   CandidateCache
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the clock used to date the output snapshot, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a fusion pipeline.
func New(cfg *config.Config, source catalogue.Source, api tmdb.API, limiter *tmdb.Limiter, cache CandidateCache, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		source:  source,
		api:     api,
		limiter: limiter,
		cache:   cache,
		logger:  logger.Named("fusion-pipeline"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the pipeline end to end and returns its bookkeeping. The
// input snapshot, when one is loaded, is never mutated; output always goes
// to a new dated file.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	result := NewRunResult()
	logger := p.logger.With(zap.String("run_id", result.RunID))
	logger.Info("Starting fusion run")

	stageStart := time.Now()
	working, loaded, err := p.loadOrBootstrap(ctx, logger)
	if err != nil {
		return nil, err
	}
	result.RecordStage(StageLoadOrBootstrap, stageStart)
	result.Records = working.Len()
	result.SnapshotLoaded = loaded

	stageStart = time.Now()
	if err := p.resolveCandidates(ctx, working, result, logger); err != nil {
		return nil, err
	}
	result.RecordStage(StageResolveCandidates, stageStart)

	if loaded {
		logger.Info("Prior enriched snapshot loaded, skipping remote enrichment")
	} else {
		stageStart = time.Now()
		resolver := resolve.Resolver{MinScore: p.cfg.MinMatchScore}
		remote := enrich.NewRemote(p.api, p.limiter, p.cache, resolver, p.logger)
		fetched, err := remote.Enrich(ctx, working)
		if err != nil {
			return nil, fmt.Errorf("remote enrichment: %w", err)
		}
		result.DetailFetches = fetched
		result.RecordStage(StageRemoteEnrich, stageStart)
	}

	stageStart = time.Now()
	relational := enrich.NewRelational(p.source, p.logger)
	if err := relational.Enrich(ctx, working); err != nil {
		return nil, fmt.Errorf("relational enrichment: %w", err)
	}
	result.RecordStage(StageRelationalEnrich, stageStart)

	stageStart = time.Now()
	outputPath, err := p.emit(working)
	if err != nil {
		return nil, err
	}
	result.RecordStage(StageEmit, stageStart)
	result.OutputPath = outputPath
	result.Complete()

	logger.Info("Fusion run complete",
		zap.Int("records", result.Records),
		zap.Int("searches", result.SearchesIssued),
		zap.String("output", result.OutputPath),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// loadOrBootstrap loads a prior enriched snapshot when configured and
// present, otherwise bootstraps the minimal id/title/year table from the
// catalogue's eligibility query. The returned flag reports whether remote
// fields are already final.
func (p *Pipeline) loadOrBootstrap(ctx context.Context, logger *zap.Logger) (*table.Table, bool, error) {
	if p.cfg.SnapshotPath != "" {
		if _, err := os.Stat(p.cfg.SnapshotPath); err == nil {
			working, err := table.ReadFile(p.cfg.SnapshotPath)
			if err != nil {
				return nil, false, fmt.Errorf("load snapshot: %w", err)
			}
			logger.Info("Loaded prior snapshot",
				zap.String("path", p.cfg.SnapshotPath),
				zap.Int("records", working.Len()))
			return working, true, nil
		}
		logger.Warn("Configured snapshot not found, bootstrapping instead",
			zap.String("path", p.cfg.SnapshotPath))
	}

	ids, err := p.source.BootstrapIDs(ctx, p.cfg.CutoffYear)
	if err != nil {
		return nil, false, fmt.Errorf("bootstrap ids: %w", err)
	}
	titles, err := p.source.Titles(ctx, ids)
	if err != nil {
		return nil, false, fmt.Errorf("bootstrap titles: %w", err)
	}

	working := table.New(ids)
	titleCells := make(map[int64]table.Cell, len(titles))
	yearCells := make(map[int64]table.Cell, len(titles))
	for _, row := range titles {
		titleCells[row.ID] = table.String(row.Title)
		if row.ProductionYear.Valid {
			yearCells[row.ID] = table.Int(row.ProductionYear.Int64)
		}
	}
	working.SetColumn("title", titleCells)
	working.SetColumn("production_year", yearCells)

	logger.Info("Bootstrapped working table", zap.Int("records", working.Len()))
	return working, false, nil
}

// resolveCandidates searches the remote service for every record without a
// cached candidate list and persists the raw results. Already-cached ids
// cost nothing, which is what makes interrupted runs cheap to resume.
func (p *Pipeline) resolveCandidates(ctx context.Context, working *table.Table, result *RunResult, logger *zap.Logger) error {
	ids := working.IDs()
	total := len(ids)

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, cached, err := p.cache.Lookup(ctx, id)
		if err != nil {
			return fmt.Errorf("check candidate cache for %d: %w", id, err)
		}
		if cached {
			continue
		}

		logger.Debug("Candidate download progress",
			zap.Int("done", i),
			zap.Int("total", total))

		title := working.Cell(id, "title")
		if title.IsNull() || title.Value() == "" {
			// Nothing to search for; cache the empty list so reruns skip it.
			if err := p.cache.Put(ctx, id, nil); err != nil {
				return fmt.Errorf("cache empty candidates for %d: %w", id, err)
			}
			continue
		}

		if err := p.limiter.Await(ctx); err != nil {
			return fmt.Errorf("await rate budget before search: %w", err)
		}
		results, reset, err := p.api.SearchMovie(ctx, title.Value())
		if err != nil {
			return fmt.Errorf("search for %d (%q): %w", id, title.Value(), err)
		}
		p.limiter.Record(reset)
		result.SearchesIssued++

		if err := p.cache.Put(ctx, id, results); err != nil {
			return fmt.Errorf("cache candidates for %d: %w", id, err)
		}
	}

	cachedCount, err := p.cache.Count(ctx)
	if err != nil {
		return fmt.Errorf("count candidate cache: %w", err)
	}
	logger.Info("Candidate lists resolved",
		zap.Int("records", total),
		zap.Int("searches_issued", result.SearchesIssued),
		zap.Int("cached_total", cachedCount))
	return nil
}

// emit writes the working table to a dated snapshot in the data directory.
func (p *Pipeline) emit(working *table.Table) (string, error) {
	if err := os.MkdirAll(p.cfg.DataDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure data directory: %w", err)
	}

	path := filepath.Join(p.cfg.DataDir, fmt.Sprintf("movie_data_%d.csv", p.now().Unix()))
	if err := table.WriteFile(path, working); err != nil {
		return "", fmt.Errorf("emit snapshot: %w", err)
	}
	return path, nil
}
