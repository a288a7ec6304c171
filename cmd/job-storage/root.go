package main

import (
	"github.com/ibagroup-eu/vf-job-storage/internal/cli"
	"github.com/ibagroup-eu/vf-job-storage/internal/config"
	"github.com/ibagroup-eu/vf-job-storage/internal/store"
	"github.com/ibagroup-eu/vf-job-storage/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:          "job-storage",
	Short:        "Stores jobs, pipelines and connections of projects",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cli.NewCmdExport(openTransfer))
	rootCmd.AddCommand(cli.NewCmdImport(openTransfer))
}

// setup loads the configuration, installs the global logger writing to logOutput and opens the store.
// The returned func flushes the logger and closes the store.
func setup(logOutput string) (*config.Config, store.Store, func(), error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, nil, err
	}

	logger := log.InitLog(log.ParseLevel(cfg.Service.LogLevel), logOutput)
	undo := zap.ReplaceGlobals(logger)

	zap.S().Infof("Using config: %s", cfg)

	zap.S().Info("Initializing data store")
	db, err := store.InitDB(cfg)
	if err != nil {
		undo()
		return nil, nil, nil, err
	}

	s := store.NewStore(db)
	cleanup := func() {
		_ = s.Close()
		_ = logger.Sync()
		undo()
	}
	return cfg, s, cleanup, nil
}
