package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ibagroup-eu/vf-job-storage/internal/store"
	"github.com/ibagroup-eu/vf-job-storage/internal/store/model"
	"go.uber.org/zap"
)

// ConnectionService keeps the connection settings of a project. Writes are last-write-wins.
type ConnectionService struct {
	store store.Store
}

func NewConnectionService(store store.Store) *ConnectionService {
	return &ConnectionService{store: store}
}

// Create stores the connection under its key, generating one when empty.
func (s *ConnectionService) Create(ctx context.Context, projectID string, connection model.Connection) (string, error) {
	if connection.Key == "" {
		connection.Key = uuid.NewString()
	}
	if connection.Value == nil {
		connection.Value = map[string]any{}
	}

	data, err := json.Marshal(connection)
	if err != nil {
		return "", NewErrSerialization("connection", connection.Key, err)
	}
	if err := s.store.Hash().Put(ctx, ConnectionPartition(projectID), connection.Key, string(data)); err != nil {
		return "", err
	}
	return connection.Key, nil
}

func (s *ConnectionService) Update(ctx context.Context, projectID string, connection model.Connection) error {
	_, err := s.Create(ctx, projectID, connection)
	return err
}

func (s *ConnectionService) Get(ctx context.Context, projectID, key string) (*model.Connection, error) {
	value, err := s.store.Hash().Get(ctx, ConnectionPartition(projectID), key)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrConnectionNotFound(key)
		}
		return nil, err
	}

	var connection model.Connection
	if err := json.Unmarshal([]byte(value), &connection); err != nil {
		return nil, NewErrSerialization("connection", key, err)
	}
	return &connection, nil
}

func (s *ConnectionService) GetAll(ctx context.Context, projectID string) ([]model.Connection, error) {
	entries, err := s.store.Hash().Entries(ctx, ConnectionPartition(projectID))
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	connections := make([]model.Connection, 0, len(entries))
	for _, entry := range entries {
		var connection model.Connection
		if err := json.Unmarshal([]byte(entry.Value), &connection); err != nil {
			zap.S().Named("connection_service").Errorw("skipping malformed connection", "project_id", projectID, "key", entry.Key, "error", err)
			continue
		}
		connections = append(connections, connection)
	}
	return connections, nil
}

func (s *ConnectionService) Delete(ctx context.Context, projectID, key string) error {
	return s.store.Hash().Delete(ctx, ConnectionPartition(projectID), key)
}

func (s *ConnectionService) DeleteAll(ctx context.Context, projectID string) error {
	return s.store.Hash().DeleteAll(ctx, ConnectionPartition(projectID))
}
