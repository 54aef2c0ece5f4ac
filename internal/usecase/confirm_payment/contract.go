package confirm_payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	Activate(ctx context.Context, id uuid.UUID, paymentRef *string) error
}

// VenueRepository источник часового пояса площадки
type VenueRepository interface {
	FindVenueByID(ctx context.Context, id int64) (*domain.Venue, error)
}

// NotificationRepository интерфейс outbox уведомлений
type NotificationRepository interface {
	Enqueue(ctx context.Context, n *domain.Notification) (bool, error)
}

// ZoneResolver разрешает IANA часовые пояса с fallback
type ZoneResolver interface {
	Resolve(name string) (*time.Location, bool)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

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
