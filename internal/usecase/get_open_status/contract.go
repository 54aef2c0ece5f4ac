package get_open_status

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
)

// HoursProvider источник часов работы площадки
type HoursProvider interface {
	Get(ctx context.Context, venueID int64) (domain.CanonicalHours, error)
}

// HoursResolver оценка открытости площадки
type HoursResolver interface {
	OpenStatus(h domain.CanonicalHours, t time.Time) domain.OpenStatus
	Location(h domain.CanonicalHours) *time.Location
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
