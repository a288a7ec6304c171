package mappers

import (
	"github.com/ibagroup-eu/vf-job-storage/api/v1alpha1"
	"github.com/ibagroup-eu/vf-job-storage/internal/service"
	"github.com/ibagroup-eu/vf-job-storage/internal/store/model"
	"github.com/ibagroup-eu/vf-job-storage/pkg/definition"
)

func JobFormApi(resource v1alpha1.Job) model.Job {
	return model.Job{
		ID:           resource.ID,
		Name:         resource.Name,
		RunID:        resource.RunID,
		Definition:   definition.Document(resource.Definition),
		Params:       resource.Params,
		StartedAt:    resource.StartedAt,
		FinishedAt:   resource.FinishedAt,
		LastModified: resource.LastModified,
		Status:       model.Status(resource.Status),
		Runnable:     resource.Runnable,
		Editable:     resource.Editable,
	}
}

func JobListFormApi(resources []v1alpha1.Job) []model.Job {
	jobs := make([]model.Job, 0, len(resources))
	for _, r := range resources {
		jobs = append(jobs, JobFormApi(r))
	}
	return jobs
}

func PipelineFormApi(resource v1alpha1.Pipeline) model.Pipeline {
	return model.Pipeline{
		ID:           resource.ID,
		Name:         resource.Name,
		Definition:   definition.Document(resource.Definition),
		Params:       resource.Params,
		Status:       model.Status(resource.Status),
		LastModified: resource.LastModified,
		StartedAt:    resource.StartedAt,
		FinishedAt:   resource.FinishedAt,
		JobsStatuses: resource.JobsStatuses,
		Editable:     resource.Editable,
	}
}

func PipelineListFormApi(resources []v1alpha1.Pipeline) []model.Pipeline {
	pipelines := make([]model.Pipeline, 0, len(resources))
	for _, r := range resources {
		pipelines = append(pipelines, PipelineFormApi(r))
	}
	return pipelines
}

func PipelinePatchFormApi(resource v1alpha1.PipelinePatch) model.PipelinePatch {
	patch := model.PipelinePatch{
		Name:         resource.Name,
		Definition:   definition.Document(resource.Definition),
		Params:       resource.Params,
		JobsStatuses: resource.JobsStatuses,
	}
	if resource.Status != nil {
		status := model.Status(*resource.Status)
		patch.Status = &status
	}
	return patch
}

func ConnectionFormApi(resource v1alpha1.Connection) model.Connection {
	return model.Connection{
		Key:   resource.Key,
		Value: resource.Value,
	}
}

func PipelineRequestsFormApi(resources []v1alpha1.PipelineRequest) []service.PipelineRequest {
	requests := make([]service.PipelineRequest, 0, len(resources))
	for _, r := range resources {
		requests = append(requests, service.PipelineRequest{
			PipelineID:          r.PipelineID,
			WithRelatedEntities: r.WithRelatedEntities,
		})
	}
	return requests
}
