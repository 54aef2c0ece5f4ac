package get_venue_availability

import (
	"time"

	"github.com/m04kA/SMC-SeatReservationService/internal/availability"
)

// Request модель запроса разметки доступности для списка площадок
type Request struct {
	VenueIDs      []int64 // ID площадок в порядке выдачи
	RequiredSeats int     // Сколько мест нужно (0 - одно)
}

// Response модель ответа, площадки в порядке запроса
// Несуществующие площадки пропускаются
type Response struct {
	Items []VenueAvailability
}

// VenueAvailability разметка одной площадки
type VenueAvailability struct {
	VenueID         int64
	Capacity        int
	Kind            availability.Kind
	Text            string
	NextAvailableAt *time.Time
}
