package mappers

import (
	"github.com/ibagroup-eu/vf-job-storage/api/v1alpha1"
	"github.com/ibagroup-eu/vf-job-storage/internal/service"
	"github.com/ibagroup-eu/vf-job-storage/internal/store/model"
)

func JobToApi(job model.Job) v1alpha1.Job {
	return v1alpha1.Job{
		ID:           job.ID,
		Name:         job.Name,
		RunID:        job.RunID,
		Definition:   job.Definition,
		Params:       job.Params,
		StartedAt:    job.StartedAt,
		FinishedAt:   job.FinishedAt,
		LastModified: job.LastModified,
		Status:       v1alpha1.StringToStatus(string(job.Status)),
		Runnable:     job.Runnable,
		Editable:     job.Editable,
	}
}

func JobListToApi(overviews []model.JobOverview) v1alpha1.JobList {
	jobs := make([]v1alpha1.JobOverview, 0, len(overviews))
	for _, o := range overviews {
		jobs = append(jobs, v1alpha1.JobOverview{
			ID:                   o.ID,
			Name:                 o.Name,
			RunID:                o.RunID,
			StartedAt:            o.StartedAt,
			FinishedAt:           o.FinishedAt,
			Status:               v1alpha1.StringToStatus(string(o.Status)),
			LastModified:         o.LastModified,
			Runnable:             o.Runnable,
			Tags:                 nonNil(o.Tags),
			DependentPipelineIDs: nonNil(o.DependentPipelineIDs),
		})
	}
	return v1alpha1.JobList{Jobs: jobs, Editable: true}
}

func PipelineToApi(pipeline model.Pipeline) v1alpha1.Pipeline {
	jobsStatuses := pipeline.JobsStatuses
	if jobsStatuses == nil {
		jobsStatuses = map[string]string{}
	}
	return v1alpha1.Pipeline{
		ID:           pipeline.ID,
		Name:         pipeline.Name,
		Definition:   pipeline.Definition,
		Params:       pipeline.Params,
		Status:       v1alpha1.StringToStatus(string(pipeline.Status)),
		LastModified: pipeline.LastModified,
		StartedAt:    pipeline.StartedAt,
		FinishedAt:   pipeline.FinishedAt,
		JobsStatuses: jobsStatuses,
		Editable:     pipeline.Editable,
	}
}

func PipelineListToApi(overviews []model.PipelineOverview) v1alpha1.PipelineList {
	pipelines := make([]v1alpha1.PipelineOverview, 0, len(overviews))
	for _, o := range overviews {
		pipelines = append(pipelines, v1alpha1.PipelineOverview{
			ID:           o.ID,
			Name:         o.Name,
			Status:       v1alpha1.StringToStatus(string(o.Status)),
			LastModified: o.LastModified,
			StartedAt:    o.StartedAt,
			FinishedAt:   o.FinishedAt,
			JobsStatuses: o.JobsStatuses,
		})
	}
	return v1alpha1.PipelineList{Pipelines: pipelines, Editable: true}
}

func ConnectionToApi(connection model.Connection) v1alpha1.Connection {
	return v1alpha1.Connection{Key: connection.Key, Value: connection.Value}
}

func ConnectionListToApi(connections []model.Connection) v1alpha1.ConnectionList {
	list := make([]v1alpha1.Connection, 0, len(connections))
	for _, c := range connections {
		list = append(list, ConnectionToApi(c))
	}
	return v1alpha1.ConnectionList{Connections: list, Editable: true}
}

func ExportToApi(result *service.ExportResult) v1alpha1.ExportResponse {
	resp := v1alpha1.ExportResponse{
		Jobs:      make([]v1alpha1.Job, 0, len(result.Jobs)),
		Pipelines: make([]v1alpha1.Pipeline, 0, len(result.Pipelines)),
	}
	for _, j := range result.Jobs {
		resp.Jobs = append(resp.Jobs, JobToApi(j))
	}
	for _, p := range result.Pipelines {
		resp.Pipelines = append(resp.Pipelines, PipelineToApi(p))
	}
	return resp
}

func ImportReportToApi(report *service.ImportReport) v1alpha1.ImportResponse {
	return v1alpha1.ImportResponse{
		NotImportedJobs:           report.NotImportedJobs,
		NotImportedPipelines:      report.NotImportedPipelines,
		ErrorsInJobs:              report.ErrorsInJobs,
		ErrorsInPipelines:         report.ErrorsInPipelines,
		MissingProjectParams:      missingParamsToApi(report.MissingProjectParams),
		MissingProjectConnections: missingParamsToApi(report.MissingProjectConnections),
	}
}

func missingParamsToApi(params map[string][]service.MissingParam) map[string][]v1alpha1.MissingParam {
	out := make(map[string][]v1alpha1.MissingParam, len(params))
	for name, list := range params {
		for _, p := range list {
			out[name] = append(out[name], v1alpha1.MissingParam{Key: p.Key, Value: p.Value})
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
