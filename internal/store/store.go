package store

import (
	"context"

	"github.com/ibagroup-eu/vf-job-storage/pkg/migrations"
	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Hash() Hash
	Names() NameIndex
	InitialMigration() error
	Close() error
}

type DataStore struct {
	db    *gorm.DB
	hash  Hash
	names NameIndex
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:    db,
		hash:  NewHashStore(db),
		names: NewNameIndexStore(db),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Hash() Hash {
	return s.hash
}

func (s *DataStore) Names() NameIndex {
	return s.names
}

// InitialMigration applies the pending sql migrations. Running it again is a no-op.
func (s *DataStore) InitialMigration() error {
	return migrations.MigrateStore(s.db)
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
