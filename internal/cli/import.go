package cli

import (
	"context"
	"fmt"
	"os"

	api "github.com/ibagroup-eu/vf-job-storage/api/v1alpha1"
	"github.com/ibagroup-eu/vf-job-storage/internal/handlers/v1alpha1/mappers"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"sigs.k8s.io/yaml"
)

type ImportOptions struct {
	GlobalOptions

	File string
}

func DefaultImportOptions() *ImportOptions {
	return &ImportOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdImport(open Opener) *cobra.Command {
	o := DefaultImportOptions()
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import jobs and pipelines into a project from a json or yaml file.",
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

func (o *ImportOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.File, "file", "f", o.File, "File holding the jobs and pipelines to import")
}

func (o *ImportOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.File == "" {
		return fmt.Errorf("file is required")
	}
	return nil
}

func (o *ImportOptions) Run(ctx context.Context, transfer Transfer) error {
	content, err := os.ReadFile(o.File)
	if err != nil {
		return fmt.Errorf("reading %s: %w", o.File, err)
	}

	// json is valid yaml, one decoder serves both
	var request api.ImportRequest
	if err := yaml.Unmarshal(content, &request); err != nil {
		return fmt.Errorf("decoding %s: %w", o.File, err)
	}

	report := transfer.Import(ctx, o.ProjectID, mappers.JobListFormApi(request.Jobs), mappers.PipelineListFormApi(request.Pipelines))
	return o.print(mappers.ImportReportToApi(report))
}
