// Package txmanager runs functions inside database transactions carried through context.
package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-SeatReservationService/pkg/dbmetrics"
)

const (
	// pgSerializationFailure and pgDeadlockDetected are retried by DoSerializable.
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"

	defaultMaxRetries = 3
	defaultBackoff    = 20 * time.Millisecond
)

var (
	// ErrSerializationFailure is returned when a serializable transaction kept conflicting after all retries.
	ErrSerializationFailure = errors.New("txmanager: serialization failure")

	// ErrBeginTx is returned when a transaction could not be started.
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommitTx is returned when commit fails for a non-retryable reason.
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")
)

// TxBeginner starts transactions. *dbmetrics.DB implements it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// RetryObserver is notified about every retried attempt.
type RetryObserver interface {
	IncTxRetry()
}

// TransactionManager stores the open transaction in the context passed to fn.
// Nested calls reuse the outer transaction.
type TransactionManager struct {
	db         TxBeginner
	maxRetries int
	backoff    time.Duration
	observer   RetryObserver
}

// Option configures a TransactionManager.
type Option func(*TransactionManager)

// WithMaxRetries sets how many times a serialization failure is retried.
func WithMaxRetries(n int) Option {
	return func(m *TransactionManager) {
		if n >= 0 {
			m.maxRetries = n
		}
	}
}

// WithBackoff sets the base delay between retries; it grows linearly per attempt.
func WithBackoff(d time.Duration) Option {
	return func(m *TransactionManager) {
		m.backoff = d
	}
}

// WithRetryObserver reports retries, usually to metrics.
func WithRetryObserver(o RetryObserver) Option {
	return func(m *TransactionManager) {
		m.observer = o
	}
}

// NewTransactionManager creates a manager over db.
func NewTransactionManager(db TxBeginner, opts ...Option) *TransactionManager {
	m := &TransactionManager{
		db:         db,
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Do runs fn in a READ COMMITTED transaction.
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// DoSerializable runs fn in a SERIALIZABLE transaction, retrying on
// serialization failures and deadlocks. fn must be safe to re-run.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	var lastErr error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		if attempt > 0 {
			if m.observer != nil {
				m.observer.IncTxRetry()
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * m.backoff):
			}
		}

		lastErr = m.run(ctx, opts, fn)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("%w: after %d attempts: %w", ErrSerializationFailure, m.maxRetries+1, lastErr)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		if IsRetryable(err) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrCommitTx, err)
	}

	return nil
}

// IsRetryable reports whether err carries a Postgres serialization failure or deadlock.
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	code := string(pqErr.Code)
	return code == pgSerializationFailure || code == pgDeadlockDetected
}
