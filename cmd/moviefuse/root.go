package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"moviefuse/pkg/config"
	"moviefuse/pkg/logging"
)

func newRootCommand() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "moviefuse",
		Short:         "Reconcile a relational movie catalogue with TMDB metadata",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing env file is fine; the environment itself may be
			// fully configured.
			if err := godotenv.Load(envFile); err != nil && envFile != ".env" {
				return fmt.Errorf("load env file %s: %w", envFile, err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading configuration")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newDatasetCommand())

	return rootCmd
}

// setup loads configuration and installs the process logger. The returned
// logger is also the zap global so packages that log through zap.L() share
// it.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(logger)
	return cfg, logger, nil
}
