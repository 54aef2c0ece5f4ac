package get_open_status

import "github.com/m04kA/SMC-SeatReservationService/internal/domain"

// Response модель ответа со статусом площадки на текущий момент
type Response struct {
	VenueID        int64
	Timezone       string
	IsOpen         bool
	Status         domain.OpenStatusKind
	TodayHoursText string
}
