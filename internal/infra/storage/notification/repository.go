package notification

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	"github.com/m04kA/SMC-SeatReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SeatReservationService/pkg/psqlbuilder"
)

// maxErrorLength ограничение длины last_error
const maxErrorLength = 1024

// Repository репозиторий outbox уведомлений
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория уведомлений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Enqueue добавляет уведомление в outbox
// Повторная постановка с тем же dedupe_key игнорируется, в этом случае возвращается false.
// Вызывается в транзакции создания бронирования, чтобы запись появлялась только вместе с ним.
func (r *Repository) Enqueue(ctx context.Context, n *domain.Notification) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert("notification_outbox").
		Columns("id", "dedupe_key", "event_type", "payload").
		Values(n.ID.String(), n.DedupeKey, n.EventType, string(n.Payload)).
		Suffix("ON CONFLICT (dedupe_key) DO NOTHING").
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: Enqueue - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: Enqueue - execute insert: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: Enqueue - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// FetchPending выбирает неотправленные уведомления в порядке создания
// Строки блокируются с SKIP LOCKED, поэтому несколько релеев не берут одну запись.
// Записи, исчерпавшие maxAttempts попыток, пропускаются (0 - без ограничения).
// Должен вызываться внутри транзакции.
func (r *Repository) FetchPending(ctx context.Context, limit, maxAttempts int) ([]*domain.Notification, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(
		"id",
		"dedupe_key",
		"event_type",
		"payload",
		"attempts",
		"created_at",
	).
		From("notification_outbox").
		Where(squirrel.Eq{"published_at": nil})

	if maxAttempts > 0 {
		builder = builder.Where(squirrel.Lt{"attempts": maxAttempts})
	}

	query, args, err := builder.
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FetchPending - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FetchPending - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.Notification, 0, limit)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.DedupeKey, &n.EventType, &n.Payload, &n.Attempts, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: FetchPending - scan row: %v", ErrScanRow, err)
		}
		result = append(result, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FetchPending - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

// MarkPublished отмечает уведомление как отправленное
func (r *Repository) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("notification_outbox").
		Set("published_at", at.UTC()).
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("last_error", nil).
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkPublished - build update query: %v", ErrBuildQuery, err)
	}

	return r.execSingle(ctx, executor, "MarkPublished", query, args)
}

// MarkFailed увеличивает счётчик попыток и сохраняет текст ошибки
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	reason = truncateUTF8(reason, maxErrorLength)

	query, args, err := psqlbuilder.Update("notification_outbox").
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("last_error", reason).
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkFailed - build update query: %v", ErrBuildQuery, err)
	}

	return r.execSingle(ctx, executor, "MarkFailed", query, args)
}

// truncateUTF8 обрезает s до limit байт, не разрывая руну
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func (r *Repository) execSingle(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrNotificationNotFound
	}

	return nil
}
