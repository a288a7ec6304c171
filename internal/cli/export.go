package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ibagroup-eu/vf-job-storage/internal/handlers/v1alpha1/mappers"
	"github.com/ibagroup-eu/vf-job-storage/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type ExportOptions struct {
	GlobalOptions

	JobIDs              []string
	PipelineIDs         []string
	WithRelatedEntities bool
	File                string
}

func DefaultExportOptions() *ExportOptions {
	return &ExportOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdExport(open Opener) *cobra.Command {
	o := DefaultExportOptions()
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export jobs and pipelines of a project.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			transfer, release, err := open()
			if err != nil {
				return err
			}
			defer release()
			return o.Run(cmd.Context(), transfer)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *ExportOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringSliceVarP(&o.JobIDs, "job", "j", o.JobIDs, "Id of a job to export. Can be repeated.")
	fs.StringSliceVar(&o.PipelineIDs, "pipeline", o.PipelineIDs, "Id of a pipeline to export. Can be repeated.")
	fs.BoolVar(&o.WithRelatedEntities, "with-related", o.WithRelatedEntities, "Also export the jobs and pipelines the pipelines refer to")
	fs.StringVarP(&o.File, "file", "f", o.File, "Write the export to this file instead of stdout")
}

func (o *ExportOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if len(o.JobIDs) == 0 && len(o.PipelineIDs) == 0 {
		return fmt.Errorf("nothing to export: pass at least one job or pipeline")
	}
	return nil
}

func (o *ExportOptions) Run(ctx context.Context, transfer Transfer) error {
	requests := make([]service.PipelineRequest, 0, len(o.PipelineIDs))
	for _, id := range o.PipelineIDs {
		requests = append(requests, service.PipelineRequest{PipelineID: id, WithRelatedEntities: o.WithRelatedEntities})
	}

	result, err := transfer.Export(ctx, o.ProjectID, o.JobIDs, requests)
	if err != nil {
		return fmt.Errorf("exporting resources: %w", err)
	}

	if o.File == "" {
		return o.print(mappers.ExportToApi(result))
	}

	marshalled, err := marshal(mappers.ExportToApi(result), o.Output)
	if err != nil {
		return err
	}
	if err := os.WriteFile(o.File, marshalled, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", o.File, err)
	}
	return nil
}
