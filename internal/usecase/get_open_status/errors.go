package get_open_status

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_open_status: invalid input data")

	// ErrVenueNotFound возвращается, когда площадка не найдена
	ErrVenueNotFound = errors.New("get_open_status: venue not found")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_open_status: internal error")
)
