package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"moviefuse/pkg/dataset"
	"moviefuse/pkg/table"
)

func newDatasetCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "dataset <snapshot.csv>",
		Short: "Build a labelled plot/outcome training set from an enriched snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			snapshot, err := table.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("load snapshot: %w", err)
			}

			labeler := dataset.Labeler{
				BreakEvenROI: cfg.BreakEvenROI,
				SuccessROI:   cfg.SuccessROI,
			}
			examples := dataset.Build(snapshot, labeler, cfg.DatasetSeed)

			if outPath == "" {
				outPath = filepath.Join(cfg.DataDir, "training_data.csv")
			}
			if err := dataset.WriteFile(outPath, examples); err != nil {
				return err
			}

			logger.Info("Training set written",
				zap.Int("examples", len(examples)),
				zap.Int("source_records", snapshot.Len()),
				zap.String("path", outPath))
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output path (defaults to <data dir>/training_data.csv)")
	return cmd
}
