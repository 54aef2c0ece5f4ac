package dbmetrics

import (
	"context"
	"database/sql"
	"time"
)

// DBExecutor is satisfied by *sql.DB, *sql.Tx, *DB and *Tx.
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TxExecutor is an open transaction.
type TxExecutor interface {
	DBExecutor
	Commit() error
	Rollback() error
}

// Recorder receives query timings. *metrics.Metrics implements it.
type Recorder interface {
	ObserveDBQuery(operation string, d time.Duration, err error)
	SetDBStats(stats sql.DBStats)
}
