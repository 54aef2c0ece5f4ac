package bookingpolicy

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("bookingpolicy client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("bookingpolicy client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation
	// Указывает, что сервис политик недоступен и решение принято без него
	ErrServiceDegraded = errors.New("bookingpolicy unavailable: graceful degradation applied")
)
