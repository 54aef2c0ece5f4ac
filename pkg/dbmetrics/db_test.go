package dbmetrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationOf(t *testing.T) {
	assert.Equal(t, "select", operationOf("SELECT id FROM venues"))
	assert.Equal(t, "insert", operationOf("\n\tINSERT INTO reservations (id) VALUES ($1)"))
	assert.Equal(t, "with", operationOf("WITH x AS (SELECT 1) SELECT * FROM x"))
	assert.Equal(t, "unknown", operationOf("   "))
}

type fakeTx struct{ DBExecutor }

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }

func TestGetExecutor(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsInTransaction(ctx))

	var db DBExecutor = &DB{}
	assert.Same(t, db, GetExecutor(ctx, db))

	tx := &fakeTx{}
	txCtx := WithTx(ctx, tx)
	assert.True(t, IsInTransaction(txCtx))
	assert.Same(t, tx, GetExecutor(txCtx, db))
}
