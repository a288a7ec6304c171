package model

import (
	"encoding/json"

	"github.com/ibagroup-eu/vf-job-storage/pkg/definition"
)

type Status string

const (
	StatusDraft Status = "Draft"
)

// Job is the record stored under project:{projectId}:job:{id}.
type Job struct {
	ID           string              `json:"id,omitempty"`
	Name         string              `json:"name"`
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

type JobList []Job

// JobOverview is the list view of a job: no definition, no params.
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

func (j Job) String() string {
	val, _ := json.Marshal(j)
	return string(val)
}

func (j Job) ToOverview() JobOverview {
	status := j.Status
	if status == "" {
		status = StatusDraft
	}
	return JobOverview{
		ID:                   j.ID,
		Name:                 j.Name,
		RunID:                j.RunID,
		StartedAt:            j.StartedAt,
		FinishedAt:           j.FinishedAt,
		Status:               status,
		LastModified:         j.LastModified,
		Runnable:             j.Runnable,
		Tags:                 []string{},
		DependentPipelineIDs: []string{},
	}
}
