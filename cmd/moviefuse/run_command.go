package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"moviefuse/pkg/candidates"
	"moviefuse/pkg/catalogue"
	"moviefuse/pkg/pipeline"
	"moviefuse/pkg/tmdb"
)

const catalogueQueryTimeout = 2 * time.Minute

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the fusion pipeline and emit a dated snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			factory := catalogue.NewConnectorFactory(cfg.Catalogue, logger)
			conn, err := factory.CreateConnector(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := conn.Validate(); err != nil {
				return fmt.Errorf("validate catalogue connection: %w", err)
			}

			store := catalogue.NewStore(conn, catalogueQueryTimeout, logger)

			client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, logger)
			if err != nil {
				return err
			}
			limiter := tmdb.NewLimiter(cfg.TMDB.Threshold, cfg.TMDB.Buffer, logger)

			cache, err := candidates.Open(cfg.CandidateCache, logger)
			if err != nil {
				return err
			}
			defer cache.Close()

			p := pipeline.New(cfg, store, client, limiter, cache, logger)
			result, err := p.Run(ctx)
			if err != nil {
				return err
			}

			logger.Info("Run finished",
				zap.String("run_id", result.RunID),
				zap.String("output", result.OutputPath))
			fmt.Fprintln(cmd.OutOrStdout(), result.OutputPath)
			return nil
		},
	}
}
