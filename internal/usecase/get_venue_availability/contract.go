package get_venue_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
)

// VenueRepository источник вместимости площадок
type VenueRepository interface {
	GetCapacities(ctx context.Context, venueIDs []int64) (map[int64]int, error)
}

// ReservationRepository источник занятости
type ReservationRepository interface {
	ListOccupied(ctx context.Context, venueIDs []int64, interval domain.Interval, now time.Time) ([]domain.OccupiedSlot, error)
}

// HoursService канонические часы работы набора площадок
type HoursService interface {
	BatchResolve(ctx context.Context, venueIDs []int64) (map[int64]domain.CanonicalHours, error)
}

// HoursResolver оценка открытости площадки
type HoursResolver interface {
	IsOpenAt(h domain.CanonicalHours, t time.Time) bool
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
