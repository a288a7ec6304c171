package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ibagroup-eu/vf-job-storage/internal/service"
	"github.com/ibagroup-eu/vf-job-storage/internal/store/model"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
	"sigs.k8s.io/yaml"
)

const (
	jsonFormat = "json"
	yamlFormat = "yaml"
)

var (
	legalOutputTypes = []string{jsonFormat, yamlFormat}
)

// Transfer moves jobs and pipelines of a project in and out of the store.
type Transfer interface {
	Export(ctx context.Context, projectID string, jobIDs []string, requests []service.PipelineRequest) (*service.ExportResult, error)
	Import(ctx context.Context, projectID string, jobs []model.Job, pipelines []model.Pipeline) *service.ImportReport
}

// Opener opens the store and returns a Transfer on top of it together with a func releasing it.
type Opener func() (Transfer, func(), error)

type GlobalOptions struct {
	ProjectID string
	Output    string

	out io.Writer
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		Output: yamlFormat,
	}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ProjectID, "project", "p", o.ProjectID, "Project the resources belong to")
	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	o.out = cmd.OutOrStdout()
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	if o.ProjectID == "" {
		return fmt.Errorf("project is required")
	}
	if !funk.ContainsString(legalOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}
	return nil
}

func (o *GlobalOptions) print(value any) error {
	marshalled, err := marshal(value, o.Output)
	if err != nil {
		return err
	}
	out := o.out
	if out == nil {
		out = os.Stdout
	}
	_, err = fmt.Fprintf(out, "%s\n", strings.TrimRight(string(marshalled), "\n"))
	return err
}

func marshal(value any, format string) ([]byte, error) {
	switch format {
	case jsonFormat:
		marshalled, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshalling resource: %w", err)
		}
		return marshalled, nil
	case yamlFormat:
		marshalled, err := yaml.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshalling resource: %w", err)
		}
		return marshalled, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}
