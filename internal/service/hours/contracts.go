package hours

import (
	"context"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
)

// HoursRepository источник канонических часов работы
type HoursRepository interface {
	GetCanonicalHours(ctx context.Context, venueIDs []int64) (map[int64]domain.CanonicalHours, error)
}

// HoursCache кэш канонических часов работы
type HoursCache interface {
	GetMany(ctx context.Context, venueIDs []int64) (map[int64]domain.CanonicalHours, []int64, error)
	SetMany(ctx context.Context, hours map[int64]domain.CanonicalHours) error
}

// CacheMetrics счётчик попаданий в кэш
type CacheMetrics interface {
	IncHoursCache(result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
