package store

import (
	"context"

	"github.com/ibagroup-eu/vf-job-storage/internal/store/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Hash is a partitioned map: partition -> record key -> serialized value.
type Hash interface {
	Get(ctx context.Context, partition, key string) (string, error)
	MultiGet(ctx context.Context, partition string, keys []string) (map[string]string, error)
	Put(ctx context.Context, partition, key, value string) error
	PutIfAbsent(ctx context.Context, partition, key, value string) (bool, error)
	Delete(ctx context.Context, partition string, keys ...string) error
	Entries(ctx context.Context, partition string) (model.EntryList, error)
	DeleteAll(ctx context.Context, partition string) error
}

type HashStore struct {
	db *gorm.DB
}

// Make sure we conform to Hash interface
var _ Hash = (*HashStore)(nil)

func NewHashStore(db *gorm.DB) Hash {
	return &HashStore{db: db}
}

func (h *HashStore) Get(ctx context.Context, partition, key string) (string, error) {
	var entry model.Entry
	result := h.getDB(ctx).Where("partition_key = ? AND record_key = ?", partition, key).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", ErrRecordNotFound
		}
		return "", errors.Wrapf(result.Error, "reading %s from %s", key, partition)
	}
	return entry.Value, nil
}

// MultiGet returns the values found for keys. Absent keys are missing from the result.
func (h *HashStore) MultiGet(ctx context.Context, partition string, keys []string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return values, nil
	}

	var entries model.EntryList
	result := h.getDB(ctx).Where("partition_key = ? AND record_key IN ?", partition, keys).Find(&entries)
	if result.Error != nil {
		return nil, errors.Wrapf(result.Error, "reading %d keys from %s", len(keys), partition)
	}
	for _, e := range entries {
		values[e.Key] = e.Value
	}
	return values, nil
}

func (h *HashStore) Put(ctx context.Context, partition, key, value string) error {
	entry := model.Entry{Partition: partition, Key: key, Value: value}
	result := h.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "partition_key"}, {Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "writing %s to %s", key, partition)
	}
	return nil
}

// PutIfAbsent writes the value only when the key is free and reports whether it did.
func (h *HashStore) PutIfAbsent(ctx context.Context, partition, key, value string) (bool, error) {
	entry := model.Entry{Partition: partition, Key: key, Value: value}
	result := h.getDB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
	if result.Error != nil {
		return false, errors.Wrapf(result.Error, "writing %s to %s", key, partition)
	}
	return result.RowsAffected > 0, nil
}

func (h *HashStore) Delete(ctx context.Context, partition string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	result := h.getDB(ctx).Where("partition_key = ? AND record_key IN ?", partition, keys).Delete(&model.Entry{})
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return errors.Wrapf(result.Error, "deleting keys from %s", partition)
	}
	return nil
}

func (h *HashStore) Entries(ctx context.Context, partition string) (model.EntryList, error) {
	var entries model.EntryList
	result := h.getDB(ctx).Where("partition_key = ?", partition).Order("record_key").Find(&entries)
	if result.Error != nil {
		return nil, errors.Wrapf(result.Error, "listing %s", partition)
	}
	return entries, nil
}

func (h *HashStore) DeleteAll(ctx context.Context, partition string) error {
	result := h.getDB(ctx).Where("partition_key = ?", partition).Delete(&model.Entry{})
	if result.Error != nil {
		return errors.Wrapf(result.Error, "deleting %s", partition)
	}
	return nil
}

func (h *HashStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return h.db.WithContext(ctx)
}
