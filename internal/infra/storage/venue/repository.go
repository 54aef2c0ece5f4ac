package venue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	"github.com/m04kA/SMC-SeatReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SeatReservationService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SeatReservationService/pkg/types"
)

// capacityExpr вместимость стола: групповой стол считается целиком, индивидуальный - по активным местам
const capacityExpr = `COALESCE(SUM(CASE WHEN t.booking_mode = 'group' THEN t.seat_count
	ELSE (SELECT COUNT(*) FROM seats s WHERE s.table_id = t.id AND s.is_active) END), 0)`

// Repository репозиторий площадок, столов и мест (только чтение и блокировки)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория площадок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// FindVenueByID получает площадку по ID
func (r *Repository) FindVenueByID(ctx context.Context, id int64) (*domain.Venue, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"timezone",
		"approval_status",
		"is_active",
		"created_at",
		"updated_at",
	).
		From("venues").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindVenueByID - build select query: %v", ErrBuildQuery, err)
	}

	var v domain.Venue
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&v.ID,
		&v.Name,
		&v.Timezone,
		&v.ApprovalStatus,
		&v.IsActive,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindVenueByID - scan venue: %w", ErrScanRow, err)
	}

	v.CreatedAt = createdAt.Time
	v.UpdatedAt = updatedAt.Time

	return &v, nil
}

// FindTableByID получает стол по ID
func (r *Repository) FindTableByID(ctx context.Context, id int64) (*domain.Table, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"venue_id",
		"name",
		"booking_mode",
		"table_price_per_hour_cents",
		"seat_count",
		"is_active",
	).
		From("venue_tables").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindTableByID - build select query: %v", ErrBuildQuery, err)
	}

	var t domain.Table
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&t.ID,
		&t.VenueID,
		&t.Name,
		&t.BookingMode,
		&t.TablePricePerHourCents,
		&t.SeatCount,
		&t.IsActive,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindTableByID - scan table: %w", ErrScanRow, err)
	}

	return &t, nil
}

// FindSeatsByIDs получает места вместе с данными их столов
// Отсутствующие ID просто не попадают в результат - проверку выполняет вызывающий код
func (r *Repository) FindSeatsByIDs(ctx context.Context, ids []int64) ([]*domain.Seat, error) {
	if len(ids) == 0 {
		return []*domain.Seat{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"s.id",
		"s.table_id",
		"t.venue_id",
		"s.label",
		"s.price_per_hour_cents",
		"s.is_active",
		"t.name",
		"t.booking_mode",
		"t.is_active",
	).
		From("seats s").
		Join("venue_tables t ON t.id = s.table_id").
		Where(squirrel.Eq{"s.id": ids}).
		OrderBy("s.id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindSeatsByIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindSeatsByIDs - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	seats := make([]*domain.Seat, 0, len(ids))
	for rows.Next() {
		var s domain.Seat
		if err := rows.Scan(
			&s.ID,
			&s.TableID,
			&s.VenueID,
			&s.Label,
			&s.PricePerHourCents,
			&s.IsActive,
			&s.TableName,
			&s.TableMode,
			&s.TableIsActive,
		); err != nil {
			return nil, fmt.Errorf("%w: FindSeatsByIDs - scan seat: %v", ErrScanRow, err)
		}
		seats = append(seats, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FindSeatsByIDs - rows error: %w", ErrScanRow, err)
	}

	return seats, nil
}

// LockSeats блокирует строки мест до конца транзакции
// Порядок блокировки фиксирован (по id), чтобы конкурентные транзакции не ловили deadlock
func (r *Repository) LockSeats(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := psqlbuilder.Select("id").
		From("seats").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id ASC").
		Suffix("FOR UPDATE").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: LockSeats - build select query: %v", ErrBuildQuery, err)
	}

	return r.lockRows(ctx, "LockSeats", query, args)
}

// LockTable блокирует строку стола до конца транзакции
func (r *Repository) LockTable(ctx context.Context, id int64) error {
	query, args, err := psqlbuilder.Select("id").
		From("venue_tables").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: LockTable - build select query: %v", ErrBuildQuery, err)
	}

	return r.lockRows(ctx, "LockTable", query, args)
}

func (r *Repository) lockRows(ctx context.Context, op string, query string, args []interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	for rows.Next() {
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %s - rows error: %w", ErrExecQuery, op, err)
	}

	return nil
}

// GetCanonicalHours получает недельные правила и часовой пояс для набора площадок
// Площадки без правил возвращаются с пустым WeeklyHours, несуществующие - отсутствуют в результате
func (r *Repository) GetCanonicalHours(ctx context.Context, venueIDs []int64) (map[int64]domain.CanonicalHours, error) {
	result := make(map[int64]domain.CanonicalHours, len(venueIDs))
	if len(venueIDs) == 0 {
		return result, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"v.id",
		"v.timezone",
		"h.day_of_week",
		"h.open_time",
		"h.close_time",
	).
		From("venues v").
		LeftJoin("venue_weekly_hours h ON h.venue_id = v.id").
		Where(squirrel.Eq{"v.id": venueIDs}).
		OrderBy("v.id ASC", "h.day_of_week ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetCanonicalHours - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetCanonicalHours - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			venueID   int64
			timezone  string
			dayOfWeek sql.NullInt16
			openTime  types.TimeString
			closeTime types.TimeString
		)

		if err := rows.Scan(&venueID, &timezone, &dayOfWeek, &openTime, &closeTime); err != nil {
			return nil, fmt.Errorf("%w: GetCanonicalHours - scan row: %v", ErrScanRow, err)
		}

		h, ok := result[venueID]
		if !ok {
			h = domain.CanonicalHours{VenueID: venueID, Timezone: timezone}
		}

		// LEFT JOIN без правил даёт NULL в колонках часов
		if dayOfWeek.Valid {
			h.WeeklyHours = append(h.WeeklyHours, domain.WeeklyHourRule{
				DayOfWeek: time.Weekday(dayOfWeek.Int16),
				OpenTime:  openTime,
				CloseTime: closeTime,
			})
		}

		result[venueID] = h
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetCanonicalHours - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

// GetCapacities получает суммарную вместимость активных столов площадок
func (r *Repository) GetCapacities(ctx context.Context, venueIDs []int64) (map[int64]int, error) {
	result := make(map[int64]int, len(venueIDs))
	if len(venueIDs) == 0 {
		return result, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("t.venue_id", capacityExpr).
		From("venue_tables t").
		Where(squirrel.Eq{"t.venue_id": venueIDs}).
		Where(squirrel.Eq{"t.is_active": true}).
		GroupBy("t.venue_id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetCapacities - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetCapacities - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var venueID int64
		var capacity int
		if err := rows.Scan(&venueID, &capacity); err != nil {
			return nil, fmt.Errorf("%w: GetCapacities - scan row: %v", ErrScanRow, err)
		}
		result[venueID] = capacity
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetCapacities - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}
