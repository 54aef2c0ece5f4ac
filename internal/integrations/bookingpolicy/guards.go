package bookingpolicy

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SeatReservationService/internal/civiltime"
	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
)

// AllowAll разрешает любое бронирование
type AllowAll struct{}

func (AllowAll) CheckAllowed(context.Context, int64, int64, domain.Interval) (domain.PolicyDecision, error) {
	return domain.Allow(), nil
}

// DailyLimit ограничивает число бронирований пользователя на площадке за гражданские сутки площадки
type DailyLimit struct {
	limit   int
	counter ReservationCounter
	hours   HoursProvider
	zones   *civiltime.Zones
	clock   TimeProvider
}

// NewDailyLimit создает ограничение. limit <= 0 отключает проверку
func NewDailyLimit(limit int, counter ReservationCounter, hours HoursProvider, zones *civiltime.Zones, clock TimeProvider) *DailyLimit {
	return &DailyLimit{
		limit:   limit,
		counter: counter,
		hours:   hours,
		zones:   zones,
		clock:   clock,
	}
}

func (g *DailyLimit) CheckAllowed(ctx context.Context, venueID, userID int64, interval domain.Interval) (domain.PolicyDecision, error) {
	if g.limit <= 0 {
		return domain.Allow(), nil
	}

	h, err := g.hours.Get(ctx, venueID)
	if err != nil {
		return domain.PolicyDecision{}, fmt.Errorf("%w: DailyLimit - load venue hours: %v", ErrInternal, err)
	}

	loc, _ := g.zones.Resolve(h.Timezone)
	date := civiltime.DateOf(interval.Start, loc)
	day := domain.Interval{
		Start: civiltime.StartOfDay(loc, date),
		End:   civiltime.StartOfDay(loc, date.AddDays(1)),
	}

	count, err := g.counter.CountUserReservations(ctx, venueID, userID, day, g.clock.Now())
	if err != nil {
		return domain.PolicyDecision{}, fmt.Errorf("%w: DailyLimit - count reservations: %v", ErrInternal, err)
	}

	if count >= g.limit {
		return domain.Deny(fmt.Sprintf("daily booking limit of %d reached for this venue", g.limit)), nil
	}

	return domain.Allow(), nil
}

// Chain применяет guards по порядку. Первый отказ или ошибка прерывает цепочку.
// ErrServiceDegraded не прерывает цепочку и возвращается вместе с итоговым решением.
type Chain []Guard

func (c Chain) CheckAllowed(ctx context.Context, venueID, userID int64, interval domain.Interval) (domain.PolicyDecision, error) {
	var degraded error
	for _, g := range c {
		decision, err := g.CheckAllowed(ctx, venueID, userID, interval)
		if err != nil {
			if errors.Is(err, ErrServiceDegraded) {
				degraded = err
				continue
			}
			return domain.PolicyDecision{}, err
		}
		if !decision.Allowed {
			return decision, nil
		}
	}
	return domain.Allow(), degraded
}
