package main

import (
	"github.com/ibagroup-eu/vf-job-storage/internal/cli"
	"github.com/ibagroup-eu/vf-job-storage/internal/service"
)

// openTransfer opens the configured store for the offline export and import commands.
// Logs go to stderr, stdout carries the command output.
func openTransfer() (cli.Transfer, func(), error) {
	_, s, cleanup, err := setup("stderr")
	if err != nil {
		return nil, nil, err
	}
	if err := s.InitialMigration(); err != nil {
		cleanup()
		return nil, nil, err
	}
	return service.NewTransferService(service.NewJobService(s), service.NewPipelineService(s)), cleanup, nil
}
