package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the db",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, s, cleanup, err := setup("stdout")
		if err != nil {
			return err
		}
		defer cleanup()

		if err := s.InitialMigration(); err != nil {
			zap.S().Errorw("running initial migration", "error", err)
			return err
		}

		zap.S().Info("Db migrated")
		return nil
	},
}
