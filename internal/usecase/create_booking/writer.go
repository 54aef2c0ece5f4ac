package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	"github.com/m04kA/SMC-SeatReservationService/pkg/ptr"
	"github.com/m04kA/SMC-SeatReservationService/pkg/txmanager"
)

// write сохраняет бронирование в сериализуемой транзакции
// Ресурсы блокируются до повторной проверки пересечений, поэтому из двух конкурентных
// запросов на один ресурс успешен только один, второй получает ErrConflict.
func (uc *UseCase) write(ctx context.Context, bc *BookingContext, price domain.PricingResult, now time.Time) (*domain.Reservation, error) {
	var result *domain.Reservation

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 1. Блокируем ресурсы (места - в порядке id)
		if bc.Mode == domain.ModeGroup {
			if err := uc.venueRepo.LockTable(txCtx, bc.Table.ID); err != nil {
				return fmt.Errorf("%w: failed to lock table: %w", ErrInternal, err)
			}
		} else {
			if err := uc.venueRepo.LockSeats(txCtx, bc.SeatIDs()); err != nil {
				return fmt.Errorf("%w: failed to lock seats: %w", ErrInternal, err)
			}
		}

		// 2. Повторная проверка пересечений под блокировкой
		overlapping, err := uc.reservationRepo.FindOverlapping(txCtx, bc.Selector(), bc.Interval, now)
		if err != nil {
			return fmt.Errorf("%w: failed to re-check overlap: %w", ErrInternal, err)
		}
		if len(overlapping) > 0 {
			uc.logger.Warn("WriteReservation: lost race for venue=%d, overlapping id=%s", bc.Venue.ID, overlapping[0].ID)
			return ErrConflict
		}

		// 3. Создаём бронирование
		res := uc.newReservation(bc, price, now)
		if err := uc.reservationRepo.Create(txCtx, res); err != nil {
			return fmt.Errorf("%w: failed to create reservation: %w", ErrInternal, err)
		}

		// 4. Ставим подтверждение в outbox (для pending - после оплаты)
		if res.Status == domain.StatusActive {
			n, err := domain.NewBookingConfirmation(res, bc.Location.String())
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInternal, err)
			}
			if _, err := uc.notificationRepo.Enqueue(txCtx, n); err != nil {
				return fmt.Errorf("%w: failed to enqueue confirmation: %w", ErrInternal, err)
			}
		}

		result = res
		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			uc.logger.Warn("WriteReservation: serialization retries exhausted for venue=%d: %v", bc.Venue.ID, err)
			return nil, ErrConflict
		}
		if errors.Is(err, ErrConflict) {
			return nil, ErrConflict
		}
		uc.logger.Error("WriteReservation: transaction failed for venue=%d: %v", bc.Venue.ID, err)
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return result, nil
}

// newReservation собирает запись бронирования с денормализованными данными
// Платное бронирование ждёт оплаты (pending), бесплатное сразу активно
func (uc *UseCase) newReservation(bc *BookingContext, price domain.PricingResult, now time.Time) *domain.Reservation {
	res := &domain.Reservation{
		ID:                 uc.newID(),
		VenueID:            bc.Venue.ID,
		UserID:             bc.UserID,
		StartAt:            bc.Interval.Start.UTC(),
		EndAt:              bc.Interval.End.UTC(),
		SeatCount:          bc.SeatCount,
		Status:             domain.StatusActive,
		SubtotalCents:      price.SubtotalCents,
		ProcessingFeeCents: price.ProcessingFeeCents,
		TotalChargeCents:   price.TotalChargeCents,
		CommissionCents:    price.CommissionCents,
		VenuePayoutCents:   price.VenuePayoutCents,
		VenueName:          bc.Venue.Name,
	}

	if !price.IsFree() {
		res.Status = domain.StatusPending
		res.ExpiresAt = ptr.Ptr(now.Add(uc.pendingTTL).UTC())
	}

	if bc.Mode == domain.ModeGroup {
		res.TableID = ptr.Ptr(bc.Table.ID)
		res.TableName = bc.Table.Name
		return res
	}

	first := bc.Seats[0]
	res.TableID = ptr.Ptr(first.TableID)
	res.SeatID = ptr.Ptr(first.ID)
	res.TableName = first.TableName
	res.SeatIDs = bc.SeatIDs()
	res.SeatLabels = make([]string, len(bc.Seats))
	for i, s := range bc.Seats {
		res.SeatLabels[i] = s.Label
	}

	return res
}
