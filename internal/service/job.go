package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ibagroup-eu/vf-job-storage/internal/store"
	"github.com/ibagroup-eu/vf-job-storage/internal/store/model"
	"github.com/ibagroup-eu/vf-job-storage/pkg/definition"
	"go.uber.org/zap"
)

// JobService stores the jobs of a project, one JSON record per job.
type JobService struct {
	store store.Store
}

func NewJobService(store store.Store) *JobService {
	return &JobService{store: store}
}

func (s *JobService) Create(ctx context.Context, projectID string, job model.Job) (string, error) {
	job.ID = uuid.NewString()
	job.LastModified = now()
	if job.Status == "" {
		job.Status = model.StatusDraft
	}
	job.Runnable = job.Definition.IsRunnable()

	ctx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	if err := s.write(ctx, projectID, job); err != nil {
		return "", err
	}

	if _, err := store.Commit(ctx); err != nil {
		return "", err
	}

	zap.S().Named("job_service").Debugw("job created", "project_id", projectID, "job_id", job.ID, "name", job.Name)
	return job.ID, nil
}

func (s *JobService) Get(ctx context.Context, projectID, id string) (*model.Job, error) {
	value, err := s.store.Hash().Get(ctx, JobPartition(projectID), JobKey(projectID, id))
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrJobNotFound(id)
		}
		return nil, err
	}

	job, err := decodeJob(value)
	if err != nil {
		return nil, NewErrSerialization("job", id, err)
	}
	return job, nil
}

// GetAll lists the overviews of every job of the project. Records that cannot be
// parsed are logged and left out.
func (s *JobService) GetAll(ctx context.Context, projectID string) ([]model.JobOverview, error) {
	entries, err := s.store.Hash().Entries(ctx, JobPartition(projectID))
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	jobs := make([]model.JobOverview, 0, len(entries))
	for _, entry := range entries {
		job, err := decodeJob(entry.Value)
		if err != nil {
			zap.S().Named("job_service").Errorw("skipping malformed job", "project_id", projectID, "key", entry.Key, "error", err)
			continue
		}
		jobs = append(jobs, job.ToOverview())
	}
	return jobs, nil
}

// GetByIDs returns the jobs found among ids, in the order of ids. Absent and
// malformed records are skipped.
func (s *JobService) GetByIDs(ctx context.Context, projectID string, ids []string) ([]model.Job, error) {
	if len(ids) == 0 {
		return []model.Job{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, JobKey(projectID, id))
	}
	values, err := s.store.Hash().MultiGet(ctx, JobPartition(projectID), keys)
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs: %w", err)
	}

	jobs := make([]model.Job, 0, len(values))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		value, found := values[key]
		if _, dup := seen[key]; !found || dup {
			continue
		}
		seen[key] = struct{}{}

		job, err := decodeJob(value)
		if err != nil {
			zap.S().Named("job_service").Errorw("Error has been occurred during getting all jobs by ID", "key", key, "error", err)
			continue
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

// IDByName returns the id of the job called name.
func (s *JobService) IDByName(ctx context.Context, projectID, name string) (string, error) {
	id, err := s.store.Names().Lookup(ctx, JobPartition(projectID), jobKind, name)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return "", NewErrResourceNotFound(name, "job")
		}
		return "", err
	}
	return id, nil
}

func (s *JobService) FindByName(ctx context.Context, projectID, name string) (*model.Job, error) {
	id, err := s.IDByName(ctx, projectID, name)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, projectID, id)
}

// Update merges the mutable fields of job onto the stored record.
func (s *JobService) Update(ctx context.Context, projectID, id string, job model.Job) error {
	ctx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	stored, err := s.Get(ctx, projectID, id)
	if err != nil {
		return err
	}

	stored.Definition = job.Definition
	stored.Params = job.Params
	stored.Runnable = job.Definition.IsRunnable()
	stored.Name = job.Name
	if job.Status != "" {
		stored.Status = job.Status
	}
	if job.RunID != 0 {
		stored.RunID = job.RunID
	}
	stored.LastModified = now()

	if err := s.write(ctx, projectID, *stored); err != nil {
		return err
	}

	_, err = store.Commit(ctx)
	return err
}

func (s *JobService) UpdateStatus(ctx context.Context, projectID, id string, status model.Status, startedAt, finishedAt string) error {
	ctx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	job, err := s.Get(ctx, projectID, id)
	if err != nil {
		return err
	}
	job.Status = status
	job.StartedAt = startedAt
	job.FinishedAt = finishedAt

	data, err := json.Marshal(job)
	if err != nil {
		return NewErrSerialization("job", id, err)
	}
	if err := s.store.Hash().Put(ctx, JobPartition(projectID), JobKey(projectID, id), string(data)); err != nil {
		return err
	}

	_, err = store.Commit(ctx)
	return err
}

// Delete removes the job. Deleting an absent job is not an error.
func (s *JobService) Delete(ctx context.Context, projectID, id string) error {
	ctx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	if err := s.store.Hash().Delete(ctx, JobPartition(projectID), JobKey(projectID, id)); err != nil {
		return err
	}
	if err := s.store.Names().Release(ctx, JobPartition(projectID), jobKind, id); err != nil {
		return err
	}

	_, err = store.Commit(ctx)
	return err
}

func (s *JobService) DeleteAll(ctx context.Context, projectID string) error {
	ctx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	if err := s.store.Hash().DeleteAll(ctx, JobPartition(projectID)); err != nil {
		return err
	}
	if err := s.store.Names().ReleaseAll(ctx, JobPartition(projectID), jobKind); err != nil {
		return err
	}

	_, err = store.Commit(ctx)
	return err
}

// Copy duplicates the job under a fresh name and returns the id of the copy.
func (s *JobService) Copy(ctx context.Context, projectID, id string) (string, error) {
	job, err := s.Get(ctx, projectID, id)
	if err != nil {
		return "", err
	}

	names, err := s.store.Names().Names(ctx, JobPartition(projectID), jobKind)
	if err != nil {
		return "", err
	}

	job.Name = GenerateCopyName(namesWithPrefix(names, job.Name), job.Name)
	job.ID = ""
	return s.Create(ctx, projectID, *job)
}

// write reserves the job name and stores the record. It expects a transaction in ctx.
func (s *JobService) write(ctx context.Context, projectID string, job model.Job) error {
	if err := s.store.Names().Reserve(ctx, JobPartition(projectID), jobKind, job.ID, job.Name); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return NewErrDuplicateName("Job", job.Name, projectID)
		}
		return err
	}

	job.Editable = false
	data, err := json.Marshal(job)
	if err != nil {
		return NewErrSerialization("job", job.ID, err)
	}
	return s.store.Hash().Put(ctx, JobPartition(projectID), JobKey(projectID, job.ID), string(data))
}

func decodeJob(value string) (*model.Job, error) {
	var job model.Job
	if err := json.Unmarshal([]byte(value), &job); err != nil {
		return nil, err
	}
	if job.Status == "" {
		job.Status = model.StatusDraft
	}
	if job.Params == nil {
		job.Params = definition.Object{}
	}
	job.Editable = true
	return &job, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
