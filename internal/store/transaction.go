package store

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errTransactionDone = errors.New("transaction already finished")

type txKey struct{}

// tx is a database transaction carried by a context. Every store call made with
// that context runs inside it until Commit or Rollback.
type tx struct {
	// id is the postgres txid, zero on sqlite. Only used in logs.
	id int64
	db *gorm.DB
}

// FromContext returns the open transaction carried by ctx, nil when there is none.
func FromContext(ctx context.Context) *gorm.DB {
	if t, ok := ctx.Value(txKey{}).(*tx); ok && t != nil && t.db != nil {
		return t.db
	}
	return nil
}

// Commit commits the transaction carried by ctx. A context without a transaction is returned unchanged.
func Commit(ctx context.Context) (context.Context, error) {
	return finish(ctx, "commit", func(db *gorm.DB) error { return db.Commit().Error })
}

// Rollback rolls back the transaction carried by ctx. Calling it after Commit returns an error and changes nothing.
func Rollback(ctx context.Context) (context.Context, error) {
	return finish(ctx, "rollback", func(db *gorm.DB) error { return db.Rollback().Error })
}

func finish(ctx context.Context, op string, fn func(*gorm.DB) error) (context.Context, error) {
	t, ok := ctx.Value(txKey{}).(*tx)
	if !ok || t == nil {
		return ctx, nil
	}
	if t.db == nil {
		return ctx, errTransactionDone
	}

	if err := fn(t.db); err != nil {
		zap.S().Named("store").Errorw("transaction failed", "op", op, "txid", t.id, "error", err)
		return ctx, err
	}
	t.db = nil
	zap.S().Named("store").Debugw("transaction done", "op", op, "txid", t.id)

	return context.WithValue(ctx, txKey{}, (*tx)(nil)), nil
}

// newTransactionContext opens a transaction on db unless ctx already carries an open one, which is then joined.
func newTransactionContext(ctx context.Context, db *gorm.DB) (context.Context, error) {
	if FromContext(ctx) != nil {
		return ctx, nil
	}

	conn := db.Session(&gorm.Session{Context: ctx}).Begin()
	if conn.Error != nil {
		return ctx, errors.Wrap(conn.Error, "opening transaction")
	}

	t := &tx{db: conn}
	if db.Dialector.Name() == "postgres" {
		var row struct{ ID int64 }
		conn.Raw("select txid_current() as id").Scan(&row)
		t.id = row.ID
	}

	return context.WithValue(ctx, txKey{}, t), nil
}
