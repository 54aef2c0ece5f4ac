package bookingpolicy

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
)

// Guard бизнес-правило, разрешающее или запрещающее бронирование
type Guard interface {
	CheckAllowed(ctx context.Context, venueID, userID int64, interval domain.Interval) (domain.PolicyDecision, error)
}

// ReservationCounter считает удерживающие бронирования пользователя
type ReservationCounter interface {
	CountUserReservations(ctx context.Context, venueID, userID int64, interval domain.Interval, now time.Time) (int, error)
}

// HoursProvider источник часового пояса площадки
type HoursProvider interface {
	Get(ctx context.Context, venueID int64) (domain.CanonicalHours, error)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
