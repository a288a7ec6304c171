package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ibagroup-eu/vf-job-storage/pkg/metrics"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
	"github.com/ngrok/sqlmw"
)

// Names of the instrumented database/sql drivers.
const (
	postgresDriverName = "pgx-instrumented"
	sqliteDriverName   = "sqlite3-instrumented"
)

var (
	verbRegex       = regexp.MustCompile(`^\s*(\w+)`)
	registerDrivers sync.Once
)

// registerInstrumentedDrivers wraps the postgres and sqlite drivers so every
// driver operation feeds the database metrics.
func registerInstrumentedDrivers() {
	registerDrivers.Do(func() {
		sql.Register(postgresDriverName, sqlmw.Driver(stdlib.GetDefaultDriver(), &metricInterceptor{}))
		sql.Register(sqliteDriverName, sqlmw.Driver(&sqlite3.SQLiteDriver{}, &metricInterceptor{}))
	})
}

type metricInterceptor struct {
	sqlmw.NullInterceptor
}

func (mi *metricInterceptor) ConnBeginTx(ctx context.Context, conn driver.ConnBeginTx, opts driver.TxOptions) (context.Context, driver.Tx, error) {
	defer measure("conn-begin-tx", "", time.Now())

	tx, err := conn.BeginTx(ctx, opts)
	return ctx, tx, err
}

func (mi *metricInterceptor) ConnExecContext(ctx context.Context, conn driver.ExecerContext, query string, args []driver.NamedValue) (driver.Result, error) {
	defer measure("conn-exec", query, time.Now())

	return conn.ExecContext(ctx, query, args)
}

func (mi *metricInterceptor) ConnQueryContext(ctx context.Context, conn driver.QueryerContext, query string, args []driver.NamedValue) (context.Context, driver.Rows, error) {
	defer measure("conn-query", query, time.Now())

	rows, err := conn.QueryContext(ctx, query, args)
	return ctx, rows, err
}

func (mi *metricInterceptor) StmtExecContext(ctx context.Context, conn driver.StmtExecContext, query string, args []driver.NamedValue) (driver.Result, error) {
	defer measure("stmt-exec", query, time.Now())

	return conn.ExecContext(ctx, args)
}

func (mi *metricInterceptor) StmtQueryContext(ctx context.Context, conn driver.StmtQueryContext, query string, args []driver.NamedValue) (context.Context, driver.Rows, error) {
	defer measure("stmt-query", query, time.Now())

	rows, err := conn.QueryContext(ctx, args)
	return ctx, rows, err
}

func (mi *metricInterceptor) TxCommit(ctx context.Context, conn driver.Tx) error {
	defer measure("tx-commit", "", time.Now())
	return conn.Commit()
}

func (mi *metricInterceptor) TxRollback(ctx context.Context, conn driver.Tx) error {
	defer measure("tx-rollback", "", time.Now())
	return conn.Rollback()
}

func measure(op, query string, start time.Time) {
	metrics.ObserveDBOperation(op, statementVerb(op, query), time.Since(start))
}

// statementVerb is the lowercased leading keyword of query, op when query has none.
func statementVerb(op, query string) string {
	matches := verbRegex.FindStringSubmatch(query)
	if len(matches) < 2 {
		return op
	}
	return strings.ToLower(matches[1])
}
