package notification_relay

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	"github.com/m04kA/SMC-SeatReservationService/internal/integrations/rabbitmq"
)

// NotificationRepository outbox уведомлений
type NotificationRepository interface {
	FetchPending(ctx context.Context, limit, maxAttempts int) ([]*domain.Notification, error)
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// Publisher брокер сообщений
type Publisher interface {
	Publish(ctx context.Context, msg rabbitmq.Message) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счётчик отправленных уведомлений
type Metrics interface {
	IncNotificationRelayed(result string)
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
