package reservation

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservation.repository: reservation not found")

	// ErrInvalidSelector возвращается, когда не указан ни стол, ни места
	ErrInvalidSelector = errors.New("reservation.repository: resource selector must target seats or a table")

	// ErrNotPending возвращается при попытке активировать бронирование не в статусе pending
	ErrNotPending = errors.New("reservation.repository: reservation is not pending")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")
)
