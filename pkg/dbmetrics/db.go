package dbmetrics

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// DefaultStatsInterval is how often pool statistics are exported.
const DefaultStatsInterval = 15 * time.Second

// DB wraps *sql.DB and reports query timings to a Recorder.
type DB struct {
	db  *sql.DB
	rec Recorder
}

// Wrap returns a DB that records into rec. A nil rec disables recording.
func Wrap(db *sql.DB, rec Recorder) *DB {
	return &DB{db: db, rec: rec}
}

// WrapWithDefault wraps db and exports pool statistics until stopCh is closed.
func WrapWithDefault(db *sql.DB, rec Recorder, stopCh <-chan struct{}) *DB {
	wrapped := Wrap(db, rec)
	if rec != nil {
		go wrapped.collectStats(DefaultStatsInterval, stopCh)
	}
	return wrapped
}

// Unwrap returns the underlying *sql.DB.
func (d *DB) Unwrap() *sql.DB {
	return d.db
}

func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := d.db.ExecContext(ctx, query, args...)
	d.observe(query, start, err)
	return res, err
}

func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query, args...)
	d.observe(query, start, err)
	return rows, err
}

func (d *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := d.db.QueryRowContext(ctx, query, args...)
	d.observe(query, start, row.Err())
	return row
}

// BeginTx starts a transaction whose statements are recorded as well.
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, rec: d.rec}, nil
}

func (d *DB) observe(query string, start time.Time, err error) {
	if d.rec == nil {
		return
	}
	d.rec.ObserveDBQuery(operationOf(query), time.Since(start), err)
}

func (d *DB) collectStats(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			d.rec.SetDBStats(d.db.Stats())
		}
	}
}

// Tx wraps *sql.Tx with the same recording as DB.
type Tx struct {
	tx  *sql.Tx
	rec Recorder
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := t.tx.ExecContext(ctx, query, args...)
	t.observe(query, start, err)
	return res, err
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.tx.QueryContext(ctx, query, args...)
	t.observe(query, start, err)
	return rows, err
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := t.tx.QueryRowContext(ctx, query, args...)
	t.observe(query, start, row.Err())
	return row
}

func (t *Tx) Commit() error {
	start := time.Now()
	err := t.tx.Commit()
	t.observeOp("commit", start, err)
	return err
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

func (t *Tx) observe(query string, start time.Time, err error) {
	t.observeOp(operationOf(query), start, err)
}

func (t *Tx) observeOp(op string, start time.Time, err error) {
	if t.rec == nil {
		return
	}
	t.rec.ObserveDBQuery(op, time.Since(start), err)
}

// operationOf returns the lower-cased leading SQL keyword, e.g. "select".
func operationOf(query string) string {
	q := strings.TrimSpace(query)
	if i := strings.IndexAny(q, " \n\t("); i > 0 {
		q = q[:i]
	}
	if q == "" {
		return "unknown"
	}
	return strings.ToLower(q)
}
