package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	venueRepo "github.com/m04kA/SMC-SeatReservationService/internal/infra/storage/venue"
	"github.com/m04kA/SMC-SeatReservationService/internal/integrations/bookingpolicy"
)

// buildContext выполняет все проверки запроса без изменения данных
// Порядок проверок фиксирован, первая неудачная прерывает построение
func (uc *UseCase) buildContext(ctx context.Context, req *Request, now time.Time) (*BookingContext, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BuildContext: validation failed: %v", err)
		return nil, err
	}

	// 2. Порядок времени и бронирование в прошлом
	interval := domain.Interval{Start: req.StartAt, End: req.EndAt}
	if err := validateTime(req.StartAt, req.EndAt, now); err != nil {
		uc.logger.Warn("BuildContext: time validation failed: %v", err)
		return nil, err
	}

	// 3. Получаем площадку
	venue, err := uc.venueRepo.FindVenueByID(ctx, req.VenueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			uc.logger.Warn("BuildContext: venue id=%d not found", req.VenueID)
			return nil, fmt.Errorf("%w: venue %d", ErrNotFound, req.VenueID)
		}
		uc.logger.Error("BuildContext: failed to get venue id=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: failed to get venue: %v", ErrInternal, err)
	}

	// 4. Проверяем статус одобрения
	if !venue.IsBookable() {
		uc.logger.Warn("BuildContext: venue id=%d is not bookable (approval=%s, active=%t)",
			venue.ID, venue.ApprovalStatus, venue.IsActive)
		return nil, ErrVenueNotBookable
	}

	// 5. Проверяем политику бронирования
	decision, err := uc.policy.CheckAllowed(ctx, venue.ID, req.UserID, interval)
	if err != nil {
		if !errors.Is(err, bookingpolicy.ErrServiceDegraded) {
			uc.logger.Error("BuildContext: policy check failed for venue=%d user=%d: %v", venue.ID, req.UserID, err)
			return nil, fmt.Errorf("%w: policy check failed: %v", ErrInternal, err)
		}
		uc.logger.Warn("BuildContext: policy check degraded for venue=%d user=%d: %v", venue.ID, req.UserID, err)
	}
	if !decision.Allowed {
		uc.logger.Warn("BuildContext: policy denied venue=%d user=%d: %s", venue.ID, req.UserID, decision.Reason)
		return nil, fmt.Errorf("%w: %s", ErrPolicyDenied, decision.Reason)
	}

	// 6. Проверяем часы работы
	canonical, err := uc.hoursProvider.Get(ctx, venue.ID)
	if err != nil {
		uc.logger.Error("BuildContext: failed to get hours for venue=%d: %v", venue.ID, err)
		return nil, fmt.Errorf("%w: failed to get venue hours: %v", ErrInternal, err)
	}

	if v := uc.hours.ValidateReservation(req.StartAt, req.EndAt, canonical); !v.IsValid {
		uc.logger.Warn("BuildContext: venue=%d outside operating hours: %v", venue.ID, v.Err)
		return nil, fmt.Errorf("%w: %v", ErrOutsideOperatingHours, v.Err)
	}

	bc := &BookingContext{
		UserID:   req.UserID,
		Venue:    venue,
		Hours:    canonical,
		Location: uc.hours.Location(canonical),
		Mode:     req.Mode,
		Interval: interval,
	}

	// 7-8. Получаем ресурсы и проверяем их активность
	switch req.Mode {
	case domain.ModeGroup:
		if err := uc.resolveTable(ctx, req, bc); err != nil {
			return nil, err
		}
	default:
		if err := uc.resolveSeats(ctx, req, bc); err != nil {
			return nil, err
		}
	}

	// 9. Предварительная проверка пересечений (окончательная - в транзакции записи)
	overlapping, err := uc.reservationRepo.FindOverlapping(ctx, bc.Selector(), interval, now)
	if err != nil {
		uc.logger.Error("BuildContext: failed to check overlap: %v", err)
		return nil, fmt.Errorf("%w: failed to check overlap: %v", ErrInternal, err)
	}
	if len(overlapping) > 0 {
		uc.logger.Warn("BuildContext: %d overlapping reservations for venue=%d, first id=%s",
			len(overlapping), venue.ID, overlapping[0].ID)
		return nil, ErrConflict
	}

	return bc, nil
}

func (uc *UseCase) resolveSeats(ctx context.Context, req *Request, bc *BookingContext) error {
	found, err := uc.venueRepo.FindSeatsByIDs(ctx, req.SeatIDs)
	if err != nil {
		uc.logger.Error("BuildContext: failed to get seats %v: %v", req.SeatIDs, err)
		return fmt.Errorf("%w: failed to get seats: %v", ErrInternal, err)
	}

	seats, err := validateSeats(req.SeatIDs, found, req.VenueID)
	if err != nil {
		uc.logger.Warn("BuildContext: seat check failed: %v", err)
		return err
	}

	var rate int64
	for _, s := range seats {
		rate += s.PricePerHourCents
	}

	bc.Seats = seats
	bc.SeatCount = len(seats)
	bc.RatePerHourCents = rate
	return nil
}

func (uc *UseCase) resolveTable(ctx context.Context, req *Request, bc *BookingContext) error {
	table, err := uc.venueRepo.FindTableByID(ctx, req.TableID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrTableNotFound) {
			uc.logger.Warn("BuildContext: table id=%d not found", req.TableID)
			return fmt.Errorf("%w: table %d", ErrNotFound, req.TableID)
		}
		uc.logger.Error("BuildContext: failed to get table id=%d: %v", req.TableID, err)
		return fmt.Errorf("%w: failed to get table: %v", ErrInternal, err)
	}

	if err := validateTable(table, req.VenueID, req.SeatCount); err != nil {
		uc.logger.Warn("BuildContext: table check failed: %v", err)
		return err
	}

	// Цена группового стола фиксирована и не зависит от числа гостей
	bc.Table = table
	bc.SeatCount = req.SeatCount
	bc.RatePerHourCents = table.TablePricePerHourCents
	return nil
}
