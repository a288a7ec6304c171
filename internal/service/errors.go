package service

import (
	"fmt"
)

type ErrDuplicateName struct {
	error
}

func NewErrDuplicateName(resourceType, name, projectID string) *ErrDuplicateName {
	return &ErrDuplicateName{fmt.Errorf("%s with name '%s' already exist in project '%s'", resourceType, name, projectID)}
}

type ErrDuplicateKey struct {
	error
}

func NewErrDuplicateKey(resourceType, key string) *ErrDuplicateKey {
	return &ErrDuplicateKey{fmt.Errorf("%s with id %s already exists", resourceType, key)}
}

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id string, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %s not found", resourceType, id)}
}

func NewErrJobNotFound(id string) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "job")
}

func NewErrPipelineNotFound(id string) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "pipeline")
}

func NewErrConnectionNotFound(key string) *ErrResourceNotFound {
	return NewErrResourceNotFound(key, "connection")
}

// ErrUnresolvedReference is returned on import when a stage names an entity
// the destination project does not have.
type ErrUnresolvedReference struct {
	error
	Stage string
}

func NewErrUnresolvedReference(resourceType, stage string) *ErrUnresolvedReference {
	return &ErrUnresolvedReference{error: fmt.Errorf("Cannot find %s for [%s] stage.", resourceType, stage), Stage: stage}
}

type ErrSerialization struct {
	error
}

func NewErrSerialization(resourceType, key string, err error) *ErrSerialization {
	return &ErrSerialization{fmt.Errorf("failed to parse %s %s: %w", resourceType, key, err)}
}

func (e *ErrSerialization) Unwrap() error {
	return e.error
}
