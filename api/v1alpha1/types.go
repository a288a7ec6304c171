package v1alpha1

import "github.com/ibagroup-eu/vf-job-storage/pkg/definition"

// Job is the full job payload, used both to read and to write a job.
type Job struct {
	ID           string              `json:"id,omitempty"`
	Name         string              `json:"name" validate:"entity_name"`
	RunID        int64               `json:"runId,omitempty"`
	Definition   definition.Document `json:"definition"`
	Params       definition.Object   `json:"params"`
	StartedAt    string              `json:"startedAt,omitempty"`
	FinishedAt   string              `json:"finishedAt,omitempty"`
	LastModified string              `json:"lastModified,omitempty"`
	Status       Status              `json:"status,omitempty"`
	Runnable     bool                `json:"runnable"`
	Editable     bool                `json:"editable"`
}

type JobOverview struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	RunID                int64    `json:"runId"`
	StartedAt            string   `json:"startedAt,omitempty"`
	FinishedAt           string   `json:"finishedAt,omitempty"`
	Status               Status   `json:"status"`
	LastModified         string   `json:"lastModified,omitempty"`
	Runnable             bool     `json:"runnable"`
	Tags                 []string `json:"tags"`
	DependentPipelineIDs []string `json:"dependentPipelineIds"`
}

type JobList struct {
	Jobs     []JobOverview `json:"jobs"`
	Editable bool          `json:"editable"`
}

// JobStatusUpdate carries the run timestamps of a status change. The status
// itself comes from the query string.
type JobStatusUpdate struct {
	StartedAt  string `json:"startedAt,omitempty"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

type Pipeline struct {
	ID           string              `json:"id,omitempty"`
	Name         string              `json:"name" validate:"entity_name"`
	Definition   definition.Document `json:"definition"`
	Params       definition.Object   `json:"params"`
	Status       Status              `json:"status,omitempty"`
	LastModified string              `json:"lastModified,omitempty"`
	StartedAt    string              `json:"startedAt,omitempty"`
	FinishedAt   string              `json:"finishedAt,omitempty"`
	JobsStatuses map[string]string   `json:"jobsStatuses"`
	Editable     bool                `json:"editable"`
}

type PipelineOverview struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Status       Status            `json:"status"`
	LastModified string            `json:"lastModified,omitempty"`
	StartedAt    string            `json:"startedAt,omitempty"`
	FinishedAt   string            `json:"finishedAt,omitempty"`
	JobsStatuses map[string]string `json:"jobsStatuses"`
}

type PipelineList struct {
	Pipelines []PipelineOverview `json:"pipelines"`
	Editable  bool               `json:"editable"`
}

// PipelinePatch is a partial pipeline. Absent fields are left unchanged.
type PipelinePatch struct {
	Name         *string             `json:"name,omitempty" validate:"omitempty,entity_name"`
	Definition   definition.Document `json:"definition,omitempty"`
	Params       definition.Object   `json:"params,omitempty"`
	Status       *Status             `json:"status,omitempty"`
	JobsStatuses map[string]string   `json:"jobsStatuses,omitempty"`
}

type Connection struct {
	Key   string            `json:"key"`
	Value definition.Object `json:"value"`
}

type ConnectionList struct {
	Connections []Connection `json:"connections"`
	Editable    bool         `json:"editable"`
}

type PipelineRequest struct {
	PipelineID          string `json:"pipelineId" validate:"required"`
	WithRelatedEntities bool   `json:"withRelatedEntities"`
}

type ExportRequest struct {
	JobIDs    []string          `json:"jobIds"`
	Pipelines []PipelineRequest `json:"pipelines" validate:"dive"`
}

type ExportResponse struct {
	Jobs      []Job      `json:"jobs"`
	Pipelines []Pipeline `json:"pipelines"`
}

// ImportRequest is not validated as a whole: a bad entity is reported, not rejected.
type ImportRequest struct {
	Jobs      []Job      `json:"jobs"`
	Pipelines []Pipeline `json:"pipelines"`
}

type MissingParam struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

type ImportResponse struct {
	NotImportedJobs           []string                  `json:"notImportedJobs"`
	NotImportedPipelines      []string                  `json:"notImportedPipelines"`
	ErrorsInJobs              map[string][]string       `json:"errorsInJobs"`
	ErrorsInPipelines         map[string][]string       `json:"errorsInPipelines"`
	MissingProjectParams      map[string][]MissingParam `json:"missingProjectParams"`
	MissingProjectConnections map[string][]MissingParam `json:"missingProjectConnections"`
}

type Error struct {
	Message   string  `json:"message"`
	RequestID *string `json:"requestId,omitempty"`
}
