package notification

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type affected int64

func (a affected) LastInsertId() (int64, error) { return 0, nil }
func (a affected) RowsAffected() (int64, error) { return int64(a), nil }

// execRecorder запоминает аргументы последнего ExecContext
type execRecorder struct {
	query string
	args  []interface{}
}

func (e *execRecorder) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	e.query, e.args = query, args
	return affected(1), nil
}

func (e *execRecorder) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, sql.ErrConnDone
}

func (e *execRecorder) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"ascii cut", "abcdef", 4, "abcd"},
		{"cut inside two-byte rune", "abcé", 4, "abc"},
		{"cut after two-byte rune", "abcéf", 5, "abcé"},
		{"cut inside four-byte rune", "ab😀", 5, "ab"},
		{"cyrillic", "ошибка", 5, "ош"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateUTF8(tt.in, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len(got), tt.limit)
		})
	}
}

func TestMarkFailed_StoresValidUTF8Reason(t *testing.T) {
	exec := &execRecorder{}
	repo := NewRepository(exec)

	// многобайтная руна на границе maxErrorLength
	reason := strings.Repeat("a", maxErrorLength-1) + "ё" + strings.Repeat("b", 10)

	require.NoError(t, repo.MarkFailed(context.Background(), uuid.New(), reason))

	assert.Contains(t, exec.query, "attempts = attempts + 1")
	assert.Contains(t, exec.args, strings.Repeat("a", maxErrorLength-1))
	for _, arg := range exec.args {
		if s, ok := arg.(string); ok {
			assert.True(t, utf8.ValidString(s))
		}
	}
}
