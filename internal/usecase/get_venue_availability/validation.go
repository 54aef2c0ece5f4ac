package get_venue_availability

import (
	"fmt"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
)

// validateRequest валидирует запрос и возвращает ID площадок без повторов
func validateRequest(req *Request) ([]int64, error) {
	if len(req.VenueIDs) == 0 {
		return nil, fmt.Errorf("%w: venueIds is required", ErrInvalidInput)
	}

	if len(req.VenueIDs) > domain.MaxVenuesPerListing {
		return nil, fmt.Errorf("%w: at most %d venues per request", ErrInvalidInput, domain.MaxVenuesPerListing)
	}

	if req.RequiredSeats < 0 || req.RequiredSeats > domain.MaxSeatsPerBooking {
		return nil, fmt.Errorf("%w: seats must be between 0 and %d", ErrInvalidInput, domain.MaxSeatsPerBooking)
	}

	seen := make(map[int64]struct{}, len(req.VenueIDs))
	ids := make([]int64, 0, len(req.VenueIDs))
	for _, id := range req.VenueIDs {
		if id <= 0 {
			return nil, fmt.Errorf("%w: venue ids must be positive", ErrInvalidInput)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids, nil
}
