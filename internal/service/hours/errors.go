package hours

import "errors"

var (
	// ErrVenueNotFound возвращается, когда площадка не найдена
	ErrVenueNotFound = errors.New("hours.service: venue not found")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("hours.service: internal error")
)
