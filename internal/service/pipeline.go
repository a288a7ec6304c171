package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ibagroup-eu/vf-job-storage/internal/store"
	"github.com/ibagroup-eu/vf-job-storage/internal/store/model"
	"github.com/ibagroup-eu/vf-job-storage/pkg/definition"
	"go.uber.org/zap"
)

type PipelineService struct {
	store store.Store
}

func NewPipelineService(store store.Store) *PipelineService {
	return &PipelineService{store: store}
}

// Create stores a new pipeline. The record is inserted only if its key is free.
func (s *PipelineService) Create(ctx context.Context, projectID string, pipeline model.Pipeline) (string, error) {
	pipeline.ID = uuid.NewString()
	pipeline.LastModified = now()
	if pipeline.Status == "" {
		pipeline.Status = model.StatusDraft
	}

	ctx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	if err := s.reserveName(ctx, projectID, pipeline); err != nil {
		return "", err
	}

	data, err := encodePipeline(pipeline)
	if err != nil {
		return "", err
	}
	key := PipelineKey(projectID, pipeline.ID)
	created, err := s.store.Hash().PutIfAbsent(ctx, PipelinePartition(projectID), key, data)
	if err != nil {
		return "", err
	}
	if !created {
		return "", NewErrDuplicateKey("Pipeline", key)
	}

	if _, err := store.Commit(ctx); err != nil {
		return "", err
	}

	zap.S().Named("pipeline_service").Debugw("pipeline created", "project_id", projectID, "pipeline_id", pipeline.ID, "name", pipeline.Name)
	return pipeline.ID, nil
}

func (s *PipelineService) Get(ctx context.Context, projectID, id string) (*model.Pipeline, error) {
	value, err := s.store.Hash().Get(ctx, PipelinePartition(projectID), PipelineKey(projectID, id))
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrPipelineNotFound(id)
		}
		return nil, err
	}

	pipeline, err := decodePipeline(value)
	if err != nil {
		return nil, NewErrSerialization("pipeline", id, err)
	}
	return pipeline, nil
}

func (s *PipelineService) GetAll(ctx context.Context, projectID string) ([]model.PipelineOverview, error) {
	pipelines, err := s.list(ctx, projectID)
	if err != nil {
		return nil, err
	}

	overviews := make([]model.PipelineOverview, 0, len(pipelines))
	for _, p := range pipelines {
		overviews = append(overviews, p.ToOverview())
	}
	return overviews, nil
}

// GetAllByNames returns the pipelines of the project whose name is one of names.
func (s *PipelineService) GetAllByNames(ctx context.Context, projectID string, names []string) ([]model.Pipeline, error) {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}

	pipelines, err := s.list(ctx, projectID)
	if err != nil {
		return nil, err
	}

	matched := make([]model.Pipeline, 0, len(names))
	for _, p := range pipelines {
		if _, ok := wanted[p.Name]; ok {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (s *PipelineService) GetByIDs(ctx context.Context, projectID string, ids []string) ([]model.Pipeline, error) {
	if len(ids) == 0 {
		return []model.Pipeline{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, PipelineKey(projectID, id))
	}
	values, err := s.store.Hash().MultiGet(ctx, PipelinePartition(projectID), keys)
	if err != nil {
		return nil, fmt.Errorf("failed to get pipelines: %w", err)
	}

	pipelines := make([]model.Pipeline, 0, len(values))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		value, found := values[key]
		if _, dup := seen[key]; !found || dup {
			continue
		}
		seen[key] = struct{}{}

		pipeline, err := decodePipeline(value)
		if err != nil {
			zap.S().Named("pipeline_service").Errorw("skipping malformed pipeline", "key", key, "error", err)
			continue
		}
		pipelines = append(pipelines, *pipeline)
	}
	return pipelines, nil
}

func (s *PipelineService) IDByName(ctx context.Context, projectID, name string) (string, error) {
	id, err := s.store.Names().Lookup(ctx, PipelinePartition(projectID), pipelineKind, name)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return "", NewErrResourceNotFound(name, "pipeline")
		}
		return "", err
	}
	return id, nil
}

func (s *PipelineService) FindByName(ctx context.Context, projectID, name string) (*model.Pipeline, error) {
	id, err := s.IDByName(ctx, projectID, name)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, projectID, id)
}

// Update replaces the stored pipeline, keeping its id.
func (s *PipelineService) Update(ctx context.Context, projectID, id string, pipeline model.Pipeline) error {
	ctx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	if _, err := s.Get(ctx, projectID, id); err != nil {
		var serr *ErrSerialization
		if !errors.As(err, &serr) {
			return err
		}
	}

	pipeline.ID = id
	pipeline.LastModified = now()
	if pipeline.Status == "" {
		pipeline.Status = model.StatusDraft
	}

	if err := s.reserveName(ctx, projectID, pipeline); err != nil {
		return err
	}
	data, err := encodePipeline(pipeline)
	if err != nil {
		return err
	}
	if err := s.store.Hash().Put(ctx, PipelinePartition(projectID), PipelineKey(projectID, id), data); err != nil {
		return err
	}

	_, err = store.Commit(ctx)
	return err
}

// Patch overlays the set fields of patch onto the stored pipeline.
func (s *PipelineService) Patch(ctx context.Context, projectID, id string, patch model.PipelinePatch) error {
	pipeline, err := s.Get(ctx, projectID, id)
	if err != nil {
		return err
	}
	return s.Update(ctx, projectID, id, patch.Apply(*pipeline))
}

func (s *PipelineService) Delete(ctx context.Context, projectID, id string) error {
	ctx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	if err := s.store.Hash().Delete(ctx, PipelinePartition(projectID), PipelineKey(projectID, id)); err != nil {
		return err
	}
	if err := s.store.Names().Release(ctx, PipelinePartition(projectID), pipelineKind, id); err != nil {
		return err
	}

	_, err = store.Commit(ctx)
	return err
}

func (s *PipelineService) DeleteAll(ctx context.Context, projectID string) error {
	ctx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	if err := s.store.Hash().DeleteAll(ctx, PipelinePartition(projectID)); err != nil {
		return err
	}
	if err := s.store.Names().ReleaseAll(ctx, PipelinePartition(projectID), pipelineKind); err != nil {
		return err
	}

	_, err = store.Commit(ctx)
	return err
}

// Copy duplicates the pipeline under a fresh name. The copy starts as a draft
// with no job statuses.
func (s *PipelineService) Copy(ctx context.Context, projectID, id string) (string, error) {
	pipeline, err := s.Get(ctx, projectID, id)
	if err != nil {
		return "", err
	}

	names, err := s.store.Names().Names(ctx, PipelinePartition(projectID), pipelineKind)
	if err != nil {
		return "", err
	}

	pipeline.Name = GenerateCopyName(namesWithPrefix(names, pipeline.Name), pipeline.Name)
	pipeline.ID = ""
	pipeline.Status = model.StatusDraft
	pipeline.JobsStatuses = map[string]string{}
	pipeline.StartedAt = ""
	pipeline.FinishedAt = ""
	return s.Create(ctx, projectID, *pipeline)
}

func (s *PipelineService) list(ctx context.Context, projectID string) ([]model.Pipeline, error) {
	entries, err := s.store.Hash().Entries(ctx, PipelinePartition(projectID))
	if err != nil {
		return nil, fmt.Errorf("failed to list pipelines: %w", err)
	}

	pipelines := make([]model.Pipeline, 0, len(entries))
	for _, entry := range entries {
		pipeline, err := decodePipeline(entry.Value)
		if err != nil {
			zap.S().Named("pipeline_service").Errorw("skipping malformed pipeline", "project_id", projectID, "key", entry.Key, "error", err)
			continue
		}
		pipelines = append(pipelines, *pipeline)
	}
	return pipelines, nil
}

func (s *PipelineService) reserveName(ctx context.Context, projectID string, pipeline model.Pipeline) error {
	err := s.store.Names().Reserve(ctx, PipelinePartition(projectID), pipelineKind, pipeline.ID, pipeline.Name)
	if errors.Is(err, store.ErrDuplicateKey) {
		return NewErrDuplicateName("Pipeline", pipeline.Name, projectID)
	}
	return err
}

func encodePipeline(pipeline model.Pipeline) (string, error) {
	if pipeline.JobsStatuses == nil {
		pipeline.JobsStatuses = map[string]string{}
	}
	pipeline.Editable = false
	data, err := json.Marshal(pipeline)
	if err != nil {
		return "", NewErrSerialization("pipeline", pipeline.ID, err)
	}
	return string(data), nil
}

func decodePipeline(value string) (*model.Pipeline, error) {
	var pipeline model.Pipeline
	if err := json.Unmarshal([]byte(value), &pipeline); err != nil {
		return nil, err
	}
	if pipeline.Status == "" {
		pipeline.Status = model.StatusDraft
	}
	if pipeline.JobsStatuses == nil {
		pipeline.JobsStatuses = map[string]string{}
	}
	if pipeline.Params == nil {
		pipeline.Params = definition.Object{}
	}
	pipeline.Editable = true
	return &pipeline, nil
}
