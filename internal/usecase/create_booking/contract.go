package create_booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	"github.com/m04kA/SMC-SeatReservationService/internal/hours"
)

// VenueRepository интерфейс репозитория площадок, столов и мест
type VenueRepository interface {
	FindVenueByID(ctx context.Context, id int64) (*domain.Venue, error)
	FindTableByID(ctx context.Context, id int64) (*domain.Table, error)
	FindSeatsByIDs(ctx context.Context, ids []int64) ([]*domain.Seat, error)
	LockSeats(ctx context.Context, ids []int64) error
	LockTable(ctx context.Context, id int64) error
}

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	FindOverlapping(ctx context.Context, selector domain.ResourceSelector, interval domain.Interval, now time.Time) ([]*domain.Reservation, error)
	Create(ctx context.Context, res *domain.Reservation) error
}

// NotificationRepository интерфейс outbox уведомлений
type NotificationRepository interface {
	Enqueue(ctx context.Context, n *domain.Notification) (bool, error)
}

// HoursProvider источник канонических часов работы площадки
type HoursProvider interface {
	Get(ctx context.Context, venueID int64) (domain.CanonicalHours, error)
}

// HoursValidator проверяет бронирование по часам работы
type HoursValidator interface {
	ValidateReservation(start, end time.Time, h domain.CanonicalHours) hours.Validation
	Location(h domain.CanonicalHours) *time.Location
}

// PolicyGuard подключаемое бизнес-правило бронирования
type PolicyGuard interface {
	CheckAllowed(ctx context.Context, venueID, userID int64, interval domain.Interval) (domain.PolicyDecision, error)
}

// PricingEngine расчёт стоимости
type PricingEngine interface {
	Quote(ratePerHourCents int64, d time.Duration) (domain.PricingResult, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счётчики исходов бронирования
type Metrics interface {
	IncBooking(mode, outcome string)
}

// IDGenerator генератор идентификаторов бронирований
type IDGenerator func() uuid.UUID

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
