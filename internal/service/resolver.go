package service

import (
	"context"
	"errors"

	"github.com/ibagroup-eu/vf-job-storage/pkg/definition"
)

type idFinder interface {
	IDByName(ctx context.Context, projectID, name string) (string, error)
}

// ReferenceResolver rewrites the entity ids of the stages of an imported definition,
// looking the entities up by the names the stages carry.
type ReferenceResolver struct {
	finders map[definition.Kind]idFinder
}

func NewReferenceResolver(jobs *JobService, pipelines *PipelineService) *ReferenceResolver {
	return &ReferenceResolver{
		finders: map[definition.Kind]idFinder{
			definition.KindJob:      jobs,
			definition.KindPipeline: pipelines,
		},
	}
}

// Resolve returns a copy of doc whose stage references point at the ids of the
// same-named entities in the project. doc itself is left untouched.
func (r *ReferenceResolver) Resolve(ctx context.Context, projectID string, doc definition.Document) (definition.Document, error) {
	resolved := doc.Clone()
	for _, stage := range resolved.Stages() {
		ref, ok := stage.Reference()
		if !ok {
			continue
		}

		id, err := r.finders[ref.Kind].IDByName(ctx, projectID, ref.Name)
		if err != nil {
			var notFound *ErrResourceNotFound
			if errors.As(err, &notFound) {
				return nil, NewErrUnresolvedReference(string(ref.Kind), stage.Name())
			}
			return nil, err
		}
		stage.SetID(ref.Kind, id)
	}
	return resolved, nil
}
