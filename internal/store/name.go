package store

import (
	"context"

	"github.com/ibagroup-eu/vf-job-storage/internal/store/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NameIndex keeps entity names unique per partition and kind.
type NameIndex interface {
	// Reserve binds name to id, releasing any other name id held.
	// It fails with ErrDuplicateKey when another entity owns the name.
	Reserve(ctx context.Context, partition, kind, id, name string) error
	Lookup(ctx context.Context, partition, kind, name string) (string, error)
	Names(ctx context.Context, partition, kind string) ([]string, error)
	Release(ctx context.Context, partition, kind, id string) error
	ReleaseAll(ctx context.Context, partition, kind string) error
}

type NameIndexStore struct {
	db *gorm.DB
}

// Make sure we conform to NameIndex interface
var _ NameIndex = (*NameIndexStore)(nil)

func NewNameIndexStore(db *gorm.DB) NameIndex {
	return &NameIndexStore{db: db}
}

func (n *NameIndexStore) Reserve(ctx context.Context, partition, kind, id, name string) error {
	db := n.getDB(ctx)

	result := db.Where("partition_key = ? AND kind = ? AND entity_id = ? AND name <> ?", partition, kind, id, name).
		Delete(&model.EntityName{})
	if result.Error != nil {
		return errors.Wrapf(result.Error, "releasing previous name of %s", id)
	}

	entry := model.EntityName{Partition: partition, Kind: kind, EntityID: id, Name: name}
	result = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "reserving name %q", name)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	owner, err := n.Lookup(ctx, partition, kind, name)
	if err != nil {
		return err
	}
	if owner != id {
		return ErrDuplicateKey
	}
	return nil
}

func (n *NameIndexStore) Lookup(ctx context.Context, partition, kind, name string) (string, error) {
	var entry model.EntityName
	result := n.getDB(ctx).Where("partition_key = ? AND kind = ? AND name = ?", partition, kind, name).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", ErrRecordNotFound
		}
		return "", errors.Wrapf(result.Error, "looking up name %q", name)
	}
	return entry.EntityID, nil
}

func (n *NameIndexStore) Names(ctx context.Context, partition, kind string) ([]string, error) {
	var names []string
	result := n.getDB(ctx).Model(&model.EntityName{}).
		Where("partition_key = ? AND kind = ?", partition, kind).
		Order("name").
		Pluck("name", &names)
	if result.Error != nil {
		return nil, errors.Wrapf(result.Error, "listing names of %s", partition)
	}
	return names, nil
}

func (n *NameIndexStore) Release(ctx context.Context, partition, kind, id string) error {
	result := n.getDB(ctx).Where("partition_key = ? AND kind = ? AND entity_id = ?", partition, kind, id).
		Delete(&model.EntityName{})
	if result.Error != nil {
		return errors.Wrapf(result.Error, "releasing name of %s", id)
	}
	return nil
}

func (n *NameIndexStore) ReleaseAll(ctx context.Context, partition, kind string) error {
	result := n.getDB(ctx).Where("partition_key = ? AND kind = ?", partition, kind).Delete(&model.EntityName{})
	if result.Error != nil {
		return errors.Wrapf(result.Error, "releasing names of %s", partition)
	}
	return nil
}

func (n *NameIndexStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return n.db.WithContext(ctx)
}
