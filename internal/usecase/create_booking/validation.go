package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.VenueID <= 0 {
		return fmt.Errorf("%w: venueID must be positive", ErrInvalidInput)
	}

	if req.StartAt.IsZero() || req.EndAt.IsZero() {
		return fmt.Errorf("%w: startAt and endAt are required", ErrInvalidInput)
	}

	switch req.Mode {
	case domain.ModeIndividual:
		if len(req.SeatIDs) == 0 {
			return fmt.Errorf("%w: at least one seat is required", ErrInvalidInput)
		}
		if len(req.SeatIDs) > domain.MaxSeatsPerBooking {
			return fmt.Errorf("%w: at most %d seats per booking", ErrInvalidInput, domain.MaxSeatsPerBooking)
		}
		if req.TableID != 0 {
			return fmt.Errorf("%w: tableId is not allowed in individual mode", ErrInvalidInput)
		}
		seen := make(map[int64]struct{}, len(req.SeatIDs))
		for _, id := range req.SeatIDs {
			if id <= 0 {
				return fmt.Errorf("%w: seat ids must be positive", ErrInvalidInput)
			}
			if _, dup := seen[id]; dup {
				return fmt.Errorf("%w: seat %d requested twice", ErrInvalidInput, id)
			}
			seen[id] = struct{}{}
		}

	case domain.ModeGroup:
		if req.TableID <= 0 {
			return fmt.Errorf("%w: tableId must be positive", ErrInvalidInput)
		}
		if len(req.SeatIDs) > 0 {
			return fmt.Errorf("%w: seatIds are not allowed in group mode", ErrInvalidInput)
		}
		if req.SeatCount <= 0 {
			return fmt.Errorf("%w: seatCount must be positive", ErrInvalidInput)
		}

	default:
		return fmt.Errorf("%w: unknown booking mode %q", ErrInvalidInput, req.Mode)
	}

	return nil
}

// validateTime проверяет порядок и будущность интервала
func validateTime(start, end, now time.Time) error {
	if !end.After(start) {
		return fmt.Errorf("%w: endAt must be after startAt", ErrInvalidInput)
	}

	if end.Sub(start) > domain.MaxBookingDuration {
		return fmt.Errorf("%w: booking cannot exceed %s", ErrInvalidInput, domain.MaxBookingDuration)
	}

	if start.Before(now) {
		return ErrPastTime
	}

	return nil
}

// validateSeats проверяет найденные места: наличие, площадку, режим и активность
// Возвращает места в порядке запроса
func validateSeats(requested []int64, found []*domain.Seat, venueID int64) ([]*domain.Seat, error) {
	byID := make(map[int64]*domain.Seat, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}

	ordered := make([]*domain.Seat, 0, len(requested))
	for _, id := range requested {
		seat, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: seat %d", ErrNotFound, id)
		}
		ordered = append(ordered, seat)
	}

	for _, seat := range ordered {
		if seat.VenueID != venueID {
			return nil, fmt.Errorf("%w: seat %d", ErrCrossVenueMismatch, seat.ID)
		}
	}

	for _, seat := range ordered {
		if seat.TableMode != domain.ModeIndividual {
			return nil, fmt.Errorf("%w: seat %d is at a group table, book the table instead", ErrInvalidInput, seat.ID)
		}
	}

	for _, seat := range ordered {
		if !seat.IsActive || !seat.TableIsActive {
			return nil, fmt.Errorf("%w: seat %d", ErrInactiveResource, seat.ID)
		}
	}

	return ordered, nil
}

// validateTable проверяет стол для группового бронирования
func validateTable(table *domain.Table, venueID int64, seatCount int) error {
	if table.VenueID != venueID {
		return fmt.Errorf("%w: table %d", ErrCrossVenueMismatch, table.ID)
	}

	if !table.IsGroupBookable() {
		return fmt.Errorf("%w: table %d is not bookable as a group", ErrInvalidInput, table.ID)
	}

	if seatCount > table.SeatCount {
		return fmt.Errorf("%w: seatCount %d exceeds table capacity %d", ErrInvalidInput, seatCount, table.SeatCount)
	}

	if !table.IsActive {
		return fmt.Errorf("%w: table %d", ErrInactiveResource, table.ID)
	}

	return nil
}
