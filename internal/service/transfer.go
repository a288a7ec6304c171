package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ibagroup-eu/vf-job-storage/internal/store/model"
	"github.com/ibagroup-eu/vf-job-storage/pkg/definition"
	"github.com/ibagroup-eu/vf-job-storage/pkg/metrics"
	"go.uber.org/zap"
)

// PipelineRequest selects a pipeline for export. WithRelatedEntities pulls in every
// job and pipeline it invokes, transitively.
type PipelineRequest struct {
	PipelineID          string `json:"pipelineId"`
	WithRelatedEntities bool   `json:"withRelatedEntities"`
}

type ExportResult struct {
	Jobs      []model.Job      `json:"jobs"`
	Pipelines []model.Pipeline `json:"pipelines"`

	jobIDs      map[string]struct{}
	pipelineIDs map[string]struct{}
}

func newExportResult() *ExportResult {
	return &ExportResult{
		Jobs:        []model.Job{},
		Pipelines:   []model.Pipeline{},
		jobIDs:      map[string]struct{}{},
		pipelineIDs: map[string]struct{}{},
	}
}

func (r *ExportResult) addJobs(jobs ...model.Job) {
	for _, job := range jobs {
		if _, found := r.jobIDs[job.ID]; found {
			continue
		}
		r.jobIDs[job.ID] = struct{}{}
		r.Jobs = append(r.Jobs, job)
	}
}

func (r *ExportResult) addPipelines(pipelines ...model.Pipeline) {
	for _, pipeline := range pipelines {
		if _, found := r.pipelineIDs[pipeline.ID]; found {
			continue
		}
		r.pipelineIDs[pipeline.ID] = struct{}{}
		r.Pipelines = append(r.Pipelines, pipeline)
	}
}

// MissingParam is a project parameter or connection an imported entity expects.
type MissingParam struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// ImportReport lists what an import could not bring in and why.
type ImportReport struct {
	NotImportedJobs           []string                  `json:"notImportedJobs"`
	NotImportedPipelines      []string                  `json:"notImportedPipelines"`
	ErrorsInJobs              map[string][]string       `json:"errorsInJobs"`
	ErrorsInPipelines         map[string][]string       `json:"errorsInPipelines"`
	MissingProjectParams      map[string][]MissingParam `json:"missingProjectParams"`
	MissingProjectConnections map[string][]MissingParam `json:"missingProjectConnections"`
}

func NewImportReport() *ImportReport {
	return &ImportReport{
		NotImportedJobs:           []string{},
		NotImportedPipelines:      []string{},
		ErrorsInJobs:              map[string][]string{},
		ErrorsInPipelines:         map[string][]string{},
		MissingProjectParams:      map[string][]MissingParam{},
		MissingProjectConnections: map[string][]MissingParam{},
	}
}

func (r *ImportReport) addJobError(name string, err error) {
	r.NotImportedJobs = appendUnique(r.NotImportedJobs, name)
	r.ErrorsInJobs[name] = append(r.ErrorsInJobs[name], err.Error())
}

func (r *ImportReport) addPipelineError(name string, err error) {
	r.NotImportedPipelines = appendUnique(r.NotImportedPipelines, name)
	r.ErrorsInPipelines[name] = append(r.ErrorsInPipelines[name], err.Error())
}

func appendUnique(values []string, value string) []string {
	for _, v := range values {
		if v == value {
			return values
		}
	}
	return append(values, value)
}

// TransferService moves jobs and pipelines in and out of a project.
type TransferService struct {
	jobs      *JobService
	pipelines *PipelineService
	resolver  *ReferenceResolver
}

func NewTransferService(jobs *JobService, pipelines *PipelineService) *TransferService {
	return &TransferService{
		jobs:      jobs,
		pipelines: pipelines,
		resolver:  NewReferenceResolver(jobs, pipelines),
	}
}

// Export collects the requested jobs and pipelines. Each entity appears once,
// in the order it was first reached.
func (t *TransferService) Export(ctx context.Context, projectID string, jobIDs []string, requests []PipelineRequest) (*ExportResult, error) {
	result := newExportResult()

	related := make([]string, 0, len(requests))
	requested := make([]string, 0, len(requests))
	for _, r := range requests {
		requested = append(requested, r.PipelineID)
		if r.WithRelatedEntities {
			related = append(related, r.PipelineID)
		}
	}

	roots, err := t.pipelines.GetByIDs(ctx, projectID, related)
	if err != nil {
		return nil, err
	}
	if err := t.collectNested(ctx, projectID, roots, result); err != nil {
		return nil, err
	}

	pipelines, err := t.pipelines.GetByIDs(ctx, projectID, requested)
	if err != nil {
		return nil, err
	}
	result.addPipelines(pipelines...)

	jobs, err := t.jobs.GetByIDs(ctx, projectID, jobIDs)
	if err != nil {
		return nil, err
	}
	result.addJobs(jobs...)

	metrics.IncreaseExportedEntitiesMetric(jobKind, len(result.Jobs))
	metrics.IncreaseExportedEntitiesMetric(pipelineKind, len(result.Pipelines))
	return result, nil
}

// collectNested adds everything the roots invoke, transitively. Each pipeline is
// expanded at most once, so reference cycles terminate.
func (t *TransferService) collectNested(ctx context.Context, projectID string, roots []model.Pipeline, result *ExportResult) error {
	visited := map[string]struct{}{}
	queue := roots
	for len(queue) > 0 {
		pipeline := queue[0]
		queue = queue[1:]
		if _, found := visited[pipeline.ID]; found {
			continue
		}
		visited[pipeline.ID] = struct{}{}

		jobs, err := t.jobs.GetByIDs(ctx, projectID, pipeline.Definition.ReferencedIDs(definition.KindJob))
		if err != nil {
			return err
		}
		result.addJobs(jobs...)

		nested, err := t.pipelines.GetByIDs(ctx, projectID, pipeline.Definition.ReferencedIDs(definition.KindPipeline))
		if err != nil {
			return err
		}
		result.addPipelines(nested...)
		queue = append(queue, nested...)
	}
	return nil
}

// Import brings jobs and then pipelines into the project. An entity whose name is
// taken overwrites the existing one. Failures are recorded per entity and never
// stop the batch.
func (t *TransferService) Import(ctx context.Context, projectID string, jobs []model.Job, pipelines []model.Pipeline) *ImportReport {
	report := NewImportReport()
	t.importJobs(ctx, projectID, jobs, report)
	t.importPipelines(ctx, projectID, pipelines, report)
	return report
}

func (t *TransferService) importJobs(ctx context.Context, projectID string, jobs []model.Job, report *ImportReport) {
	logger := zap.S().Named("transfer_service")
	for _, job := range jobs {
		job.Status = model.StatusDraft

		result, err := t.upsertJob(ctx, projectID, job)
		if err != nil {
			logger.Errorw("failed to import job", "project_id", projectID, "name", job.Name, "error", err)
			report.addJobError(job.Name, err)
		}
		metrics.IncreaseImportedEntitiesMetric(jobKind, result)
	}
}

func (t *TransferService) upsertJob(ctx context.Context, projectID string, job model.Job) (string, error) {
	_, err := t.jobs.Create(ctx, projectID, job)
	if err == nil {
		return metrics.ImportResultCreated, nil
	}

	var duplicate *ErrDuplicateName
	if !errors.As(err, &duplicate) {
		return metrics.ImportResultFailed, err
	}

	zap.S().Named("transfer_service").Infof("job %q already exists in project %s, updating it", job.Name, projectID)
	existing, err := t.jobs.FindByName(ctx, projectID, job.Name)
	if err != nil {
		return metrics.ImportResultFailed, fmt.Errorf("failed to update existing job: %w", err)
	}
	if err := t.jobs.Update(ctx, projectID, existing.ID, job); err != nil {
		return metrics.ImportResultFailed, err
	}
	return metrics.ImportResultUpdated, nil
}

func (t *TransferService) importPipelines(ctx context.Context, projectID string, pipelines []model.Pipeline, report *ImportReport) {
	logger := zap.S().Named("transfer_service")
	for _, pipeline := range orderByNestedReferences(pipelines) {
		pipeline.JobsStatuses = map[string]string{}
		pipeline.Status = model.StatusDraft

		result, err := t.upsertPipeline(ctx, projectID, pipeline)
		if err != nil {
			logger.Errorw("failed to import pipeline", "project_id", projectID, "name", pipeline.Name, "error", err)
			report.addPipelineError(pipeline.Name, err)
		}
		metrics.IncreaseImportedEntitiesMetric(pipelineKind, result)
	}
}

func (t *TransferService) upsertPipeline(ctx context.Context, projectID string, pipeline model.Pipeline) (string, error) {
	resolved, err := t.resolver.Resolve(ctx, projectID, pipeline.Definition)
	if err != nil {
		return metrics.ImportResultFailed, err
	}
	pipeline.Definition = resolved

	_, err = t.pipelines.Create(ctx, projectID, pipeline)
	if err == nil {
		return metrics.ImportResultCreated, nil
	}

	var duplicate *ErrDuplicateName
	if !errors.As(err, &duplicate) {
		return metrics.ImportResultFailed, err
	}

	zap.S().Named("transfer_service").Infof("pipeline %q already exists in project %s, updating it", pipeline.Name, projectID)
	id, err := t.pipelines.IDByName(ctx, projectID, pipeline.Name)
	if err != nil {
		return metrics.ImportResultFailed, fmt.Errorf("failed to update existing pipeline: %w", err)
	}
	if err := t.pipelines.Update(ctx, projectID, id, pipeline); err != nil {
		return metrics.ImportResultFailed, err
	}
	return metrics.ImportResultUpdated, nil
}

// orderByNestedReferences moves every pipeline after the pipelines of the same batch
// it invokes by name. A cycle is cut at the pipeline that closes it.
func orderByNestedReferences(pipelines []model.Pipeline) []model.Pipeline {
	byName := make(map[string]int, len(pipelines))
	for i, p := range pipelines {
		if _, found := byName[p.Name]; !found {
			byName[p.Name] = i
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(pipelines))
	ordered := make([]model.Pipeline, 0, len(pipelines))

	var visit func(i int)
	visit = func(i int) {
		if state[i] != unvisited {
			return
		}
		state[i] = visiting
		for _, name := range pipelines[i].Definition.ReferencedNames(definition.KindPipeline) {
			if j, found := byName[name]; found {
				visit(j)
			}
		}
		state[i] = done
		ordered = append(ordered, pipelines[i])
	}

	for i := range pipelines {
		visit(i)
	}
	return ordered
}
