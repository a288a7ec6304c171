package model

import (
	"encoding/json"

	"github.com/ibagroup-eu/vf-job-storage/pkg/definition"
)

// Pipeline is the record stored under project:{projectId}:pipeline:{id}.
type Pipeline struct {
	ID           string              `json:"id,omitempty"`
	Name         string              `json:"name"`
	Definition   definition.Document `json:"definition"`
	Params       definition.Object   `json:"params"`
	Status       Status              `json:"status,omitempty"`
	LastModified string              `json:"lastModified,omitempty"`
	StartedAt    string              `json:"startedAt,omitempty"`
	FinishedAt   string              `json:"finishedAt,omitempty"`
	JobsStatuses map[string]string   `json:"jobsStatuses"`
	Editable     bool                `json:"editable"`
}

type PipelineList []Pipeline

type PipelineOverview struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Status       Status            `json:"status"`
	LastModified string            `json:"lastModified,omitempty"`
	StartedAt    string            `json:"startedAt,omitempty"`
	FinishedAt   string            `json:"finishedAt,omitempty"`
	JobsStatuses map[string]string `json:"jobsStatuses"`
}

// PipelinePatch lists the fields a partial update may touch. Nil means "keep".
type PipelinePatch struct {
	Name         *string             `json:"name,omitempty"`
	Definition   definition.Document `json:"definition,omitempty"`
	Params       definition.Object   `json:"params,omitempty"`
	Status       *Status             `json:"status,omitempty"`
	JobsStatuses map[string]string   `json:"jobsStatuses,omitempty"`
}

func (p Pipeline) String() string {
	val, _ := json.Marshal(p)
	return string(val)
}

func (p Pipeline) ToOverview() PipelineOverview {
	status := p.Status
	if status == "" {
		status = StatusDraft
	}
	jobsStatuses := p.JobsStatuses
	if jobsStatuses == nil {
		jobsStatuses = map[string]string{}
	}
	return PipelineOverview{
		ID:           p.ID,
		Name:         p.Name,
		Status:       status,
		LastModified: p.LastModified,
		StartedAt:    p.StartedAt,
		FinishedAt:   p.FinishedAt,
		JobsStatuses: jobsStatuses,
	}
}

// Apply overlays the set fields of the patch onto p.
func (patch PipelinePatch) Apply(p Pipeline) Pipeline {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Definition != nil {
		p.Definition = patch.Definition
	}
	if patch.Params != nil {
		p.Params = patch.Params
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.JobsStatuses != nil {
		p.JobsStatuses = patch.JobsStatuses
	}
	return p
}
