package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	"github.com/m04kA/SMC-SeatReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SeatReservationService/pkg/psqlbuilder"
)

// reservationColumns колонки бронирования с денормализованными названиями площадки и стола
var reservationColumns = []string{
	"r.id",
	"r.venue_id",
	"r.table_id",
	"r.seat_id",
	"r.user_id",
	"r.start_at",
	"r.end_at",
	"r.seat_count",
	"r.status",
	"r.expires_at",
	"r.subtotal_cents",
	"r.processing_fee_cents",
	"r.total_charge_cents",
	"r.commission_cents",
	"r.venue_payout_cents",
	"r.payment_ref",
	"r.created_at",
	"r.updated_at",
	"v.name",
	"COALESCE(t.name, '')",
}

// Repository репозиторий бронирований
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет бронирование и строки reservation_seats для каждого места
// Если в контексте передана активная транзакция, использует её.
// Проверку пересечений выполняет вызывающий код в той же транзакции после блокировки ресурсов.
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("reservations").
		Columns(
			"id",
			"venue_id",
			"table_id",
			"seat_id",
			"user_id",
			"start_at",
			"end_at",
			"seat_count",
			"status",
			"expires_at",
			"subtotal_cents",
			"processing_fee_cents",
			"total_charge_cents",
			"commission_cents",
			"venue_payout_cents",
			"payment_ref",
		).
		Values(
			res.ID.String(),
			res.VenueID,
			res.TableID,
			res.SeatID,
			res.UserID,
			res.StartAt.UTC(),
			res.EndAt.UTC(),
			res.SeatCount,
			string(res.Status),
			res.ExpiresAt,
			res.SubtotalCents,
			res.ProcessingFeeCents,
			res.TotalChargeCents,
			res.CommissionCents,
			res.VenuePayoutCents,
			res.PaymentRef,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt); err != nil {
		return fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	if len(res.SeatIDs) == 0 {
		return nil
	}

	seatsInsert := psqlbuilder.Insert("reservation_seats").Columns("reservation_id", "seat_id")
	for _, seatID := range res.SeatIDs {
		seatsInsert = seatsInsert.Values(res.ID.String(), seatID)
	}

	query, args, err = seatsInsert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: Create - build seats insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Create - execute seats insert: %w", ErrExecQuery, err)
	}

	return nil
}

// FindOverlapping получает бронирования, удерживающие ресурс в момент now и пересекающие интервал
// Для мест проверяются все строки reservation_seats, для стола - групповые бронирования (seat_id IS NULL).
// Пересечение строгое: [a, b) и [b, c) не пересекаются.
func (r *Repository) FindOverlapping(
	ctx context.Context,
	selector domain.ResourceSelector,
	interval domain.Interval,
	now time.Time,
) ([]*domain.Reservation, error) {
	if selector.IsEmpty() {
		return nil, ErrInvalidSelector
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"r.id",
		"r.venue_id",
		"r.table_id",
		"r.seat_id",
		"r.user_id",
		"r.start_at",
		"r.end_at",
		"r.seat_count",
		"r.status",
		"r.expires_at",
	).
		Distinct().
		From("reservations r").
		Where(squirrel.Lt{"r.start_at": interval.End.UTC()}).
		Where(squirrel.Gt{"r.end_at": interval.Start.UTC()}).
		Where(blockingAt(now))

	if selector.IsTable() {
		selectBuilder = selectBuilder.
			Where(squirrel.Eq{"r.table_id": selector.TableID}).
			Where(squirrel.Eq{"r.seat_id": nil})
	} else {
		selectBuilder = selectBuilder.
			Join("reservation_seats rs ON rs.reservation_id = r.id").
			Where(squirrel.Eq{"rs.seat_id": selector.SeatIDs})
	}

	query, args, err := selectBuilder.OrderBy("r.start_at ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.Reservation, 0)
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(
			&res.ID,
			&res.VenueID,
			&res.TableID,
			&res.SeatID,
			&res.UserID,
			&res.StartAt,
			&res.EndAt,
			&res.SeatCount,
			&res.Status,
			&res.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("%w: FindOverlapping - scan row: %v", ErrScanRow, err)
		}
		result = append(result, &res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

// GetByID получает бронирование по ID вместе с местами
// Внутри транзакции строка бронирования блокируется (FOR UPDATE OF r)
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations r").
		Join("venues v ON v.id = r.venue_id").
		LeftJoin("venue_tables t ON t.id = r.table_id").
		Where(squirrel.Eq{"r.id": id.String()})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE OF r")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err)
	}

	if err := r.attachSeats(ctx, []*domain.Reservation{res}); err != nil {
		return nil, err
	}

	return res, nil
}

// ListByUser получает бронирования пользователя, новые сверху
// Опционально фильтрует по статусу
func (r *Repository) ListByUser(ctx context.Context, userID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations r").
		Join("venues v ON v.id = r.venue_id").
		LeftJoin("venue_tables t ON t.id = r.table_id").
		Where(squirrel.Eq{"r.user_id": userID}).
		OrderBy("r.start_at DESC")

	// Фильтрация по статусу, если указан
	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"r.status": string(*status)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByUser - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByUser - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByUser - scan row: %v", ErrScanRow, err)
		}
		result = append(result, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByUser - rows error: %w", ErrScanRow, err)
	}

	if err := r.attachSeats(ctx, result); err != nil {
		return nil, err
	}

	return result, nil
}

// ListOccupied получает занятость площадок, пересекающую интервал, для расчёта доступности
func (r *Repository) ListOccupied(
	ctx context.Context,
	venueIDs []int64,
	interval domain.Interval,
	now time.Time,
) ([]domain.OccupiedSlot, error) {
	if len(venueIDs) == 0 {
		return []domain.OccupiedSlot{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("r.venue_id", "r.start_at", "r.end_at", "r.seat_count").
		From("reservations r").
		Where(squirrel.Eq{"r.venue_id": venueIDs}).
		Where(squirrel.Lt{"r.start_at": interval.End.UTC()}).
		Where(squirrel.Gt{"r.end_at": interval.Start.UTC()}).
		Where(blockingAt(now)).
		OrderBy("r.venue_id ASC", "r.start_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListOccupied - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOccupied - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]domain.OccupiedSlot, 0)
	for rows.Next() {
		var slot domain.OccupiedSlot
		if err := rows.Scan(&slot.VenueID, &slot.StartAt, &slot.EndAt, &slot.SeatCount); err != nil {
			return nil, fmt.Errorf("%w: ListOccupied - scan row: %v", ErrScanRow, err)
		}
		result = append(result, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListOccupied - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

// CountUserReservations считает удерживающие бронирования пользователя на площадке, начинающиеся в интервале
func (r *Repository) CountUserReservations(
	ctx context.Context,
	venueID, userID int64,
	interval domain.Interval,
	now time.Time,
) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("reservations r").
		Where(squirrel.Eq{"r.venue_id": venueID, "r.user_id": userID}).
		Where(squirrel.GtOrEq{"r.start_at": interval.Start.UTC()}).
		Where(squirrel.Lt{"r.start_at": interval.End.UTC()}).
		Where(blockingAt(now)).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountUserReservations - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountUserReservations - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

// Activate переводит pending-бронирование в active и сохраняет ссылку на платёж
func (r *Repository) Activate(ctx context.Context, id uuid.UUID, paymentRef *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", string(domain.StatusActive)).
		Set("expires_at", nil).
		Set("payment_ref", paymentRef).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id.String(), "status": string(domain.StatusPending)}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Activate - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Activate - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Activate - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrNotPending
	}

	return nil
}

// attachSeats догружает места бронирований одним запросом
func (r *Repository) attachSeats(ctx context.Context, reservations []*domain.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	byID := make(map[uuid.UUID]*domain.Reservation, len(reservations))
	ids := make([]string, 0, len(reservations))
	for _, res := range reservations {
		byID[res.ID] = res
		ids = append(ids, res.ID.String())
	}

	query, args, err := psqlbuilder.Select("rs.reservation_id", "rs.seat_id", "s.label").
		From("reservation_seats rs").
		Join("seats s ON s.id = rs.seat_id").
		Where(squirrel.Eq{"rs.reservation_id": ids}).
		OrderBy("rs.reservation_id ASC", "rs.seat_id ASC").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: attachSeats - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: attachSeats - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			reservationID uuid.UUID
			seatID        int64
			label         string
		)
		if err := rows.Scan(&reservationID, &seatID, &label); err != nil {
			return fmt.Errorf("%w: attachSeats - scan row: %v", ErrScanRow, err)
		}
		if res, ok := byID[reservationID]; ok {
			res.SeatIDs = append(res.SeatIDs, seatID)
			res.SeatLabels = append(res.SeatLabels, label)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: attachSeats - rows error: %w", ErrScanRow, err)
	}

	return nil
}

// blockingAt условие "бронирование удерживает ресурс в момент now":
// не отменено и, если pending, ещё не истекло
func blockingAt(now time.Time) squirrel.Sqlizer {
	return squirrel.And{
		squirrel.Eq{"r.status": statusValues(domain.BlockingStatuses)},
		squirrel.Or{
			squirrel.NotEq{"r.status": string(domain.StatusPending)},
			squirrel.Gt{"r.expires_at": now.UTC()},
		},
	}
}

func statusValues(statuses []domain.ReservationStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var res domain.Reservation
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&res.ID,
		&res.VenueID,
		&res.TableID,
		&res.SeatID,
		&res.UserID,
		&res.StartAt,
		&res.EndAt,
		&res.SeatCount,
		&res.Status,
		&res.ExpiresAt,
		&res.SubtotalCents,
		&res.ProcessingFeeCents,
		&res.TotalChargeCents,
		&res.CommissionCents,
		&res.VenuePayoutCents,
		&res.PaymentRef,
		&createdAt,
		&updatedAt,
		&res.VenueName,
		&res.TableName,
	)
	if err != nil {
		return nil, err
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return &res, nil
}
