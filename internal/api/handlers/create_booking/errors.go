package create_booking

import (
	"errors"
	"net/http"

	createBooking "github.com/m04kA/SMC-SeatReservationService/internal/usecase/create_booking"
)

const (
	msgInvalidInput     = "некорректные параметры бронирования"
	msgPastTime         = "время начала бронирования уже прошло"
	msgNotFound         = "площадка, стол или место не найдены"
	msgCrossVenue       = "стол или место принадлежат другой площадке"
	msgInactiveResource = "стол или место недоступны для бронирования"
	msgOutsideHours     = "бронирование выходит за часы работы площадки"
	msgPolicyDenied     = "бронирование запрещено правилами площадки"
	msgConflict         = "выбранное время уже занято"
	msgVenueNotBookable = "площадка сейчас не принимает бронирования"
)

// StatusFor сопоставляет ошибку use case с HTTP-статусом и сообщением для клиента
// Для неизвестных ошибок возвращает 500 и пустое сообщение
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, createBooking.ErrInvalidInput):
		return http.StatusBadRequest, msgInvalidInput
	case errors.Is(err, createBooking.ErrPastTime):
		return http.StatusBadRequest, msgPastTime
	case errors.Is(err, createBooking.ErrOutsideOperatingHours):
		return http.StatusBadRequest, msgOutsideHours
	case errors.Is(err, createBooking.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, createBooking.ErrPolicyDenied):
		return http.StatusUnprocessableEntity, msgPolicyDenied
	case errors.Is(err, createBooking.ErrVenueNotBookable):
		return http.StatusUnprocessableEntity, msgVenueNotBookable
	case errors.Is(err, createBooking.ErrCrossVenueMismatch):
		return http.StatusUnprocessableEntity, msgCrossVenue
	case errors.Is(err, createBooking.ErrInactiveResource):
		return http.StatusUnprocessableEntity, msgInactiveResource
	case errors.Is(err, createBooking.ErrConflict):
		return http.StatusConflict, msgConflict
	default:
		return http.StatusInternalServerError, ""
	}
}
