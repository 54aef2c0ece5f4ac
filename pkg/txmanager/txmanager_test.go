package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SeatReservationService/pkg/dbmetrics"
)

type stubTx struct {
	dbmetrics.DBExecutor
	commitErr  error
	committed  bool
	rolledBack bool
}

func (t *stubTx) Commit() error {
	t.committed = true
	return t.commitErr
}

func (t *stubTx) Rollback() error {
	t.rolledBack = true
	return nil
}

type stubBeginner struct {
	txs       []*stubTx
	isolation []sql.IsolationLevel
	commitErr []error
}

func (b *stubBeginner) BeginTx(_ context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	tx := &stubTx{}
	if n := len(b.txs); n < len(b.commitErr) {
		tx.commitErr = b.commitErr[n]
	}
	b.txs = append(b.txs, tx)
	b.isolation = append(b.isolation, opts.Isolation)
	return tx, nil
}

type countingObserver struct{ n int }

func (o *countingObserver) IncTxRetry() { o.n++ }

func TestDoSerializable_CommitsAndExposesTx(t *testing.T) {
	db := &stubBeginner{}
	m := NewTransactionManager(db)

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		assert.True(t, dbmetrics.IsInTransaction(ctx))
		return nil
	})

	require.NoError(t, err)
	require.Len(t, db.txs, 1)
	assert.True(t, db.txs[0].committed)
	assert.Equal(t, sql.LevelSerializable, db.isolation[0])
}

func TestDoSerializable_RetriesSerializationFailure(t *testing.T) {
	db := &stubBeginner{}
	obs := &countingObserver{}
	m := NewTransactionManager(db, WithBackoff(time.Millisecond), WithRetryObserver(obs))

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("insert: %w", &pq.Error{Code: "40001"})
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, obs.n)
	assert.True(t, db.txs[0].rolledBack)
	assert.True(t, db.txs[2].committed)
}

func TestDoSerializable_GivesUpAfterMaxRetries(t *testing.T) {
	m := NewTransactionManager(&stubBeginner{}, WithMaxRetries(2), WithBackoff(time.Millisecond))

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return &pq.Error{Code: "40P01"}
	})

	assert.ErrorIs(t, err, ErrSerializationFailure)
	assert.Equal(t, 3, calls)
}

func TestDoSerializable_RetriesCommitFailure(t *testing.T) {
	db := &stubBeginner{commitErr: []error{&pq.Error{Code: "40001"}}}
	m := NewTransactionManager(db, WithBackoff(time.Millisecond))

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error { return nil })

	require.NoError(t, err)
	assert.Len(t, db.txs, 2)
}

func TestDoSerializable_DoesNotRetryBusinessErrors(t *testing.T) {
	errBusiness := errors.New("conflict")
	m := NewTransactionManager(&stubBeginner{})

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return errBusiness
	})

	assert.ErrorIs(t, err, errBusiness)
	assert.Equal(t, 1, calls)
}

func TestDo_NestedReusesOuterTx(t *testing.T) {
	db := &stubBeginner{}
	m := NewTransactionManager(db)

	err := m.Do(context.Background(), func(ctx context.Context) error {
		return m.DoSerializable(ctx, func(ctx context.Context) error { return nil })
	})

	require.NoError(t, err)
	assert.Len(t, db.txs, 1)
	assert.Equal(t, sql.LevelReadCommitted, db.isolation[0])
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pq.Error{Code: "40001"}))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", &pq.Error{Code: "40P01"})))
	assert.False(t, IsRetryable(&pq.Error{Code: "23505"}))
	assert.False(t, IsRetryable(errors.New("boom")))
}
