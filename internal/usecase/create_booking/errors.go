package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrPastTime возвращается, когда начало бронирования в прошлом
	ErrPastTime = errors.New("create_booking: start time is in the past")

	// ErrNotFound возвращается, когда площадка, стол или место не найдены
	ErrNotFound = errors.New("create_booking: resource not found")

	// ErrCrossVenueMismatch возвращается, когда стол или место принадлежат другой площадке
	ErrCrossVenueMismatch = errors.New("create_booking: resource belongs to another venue")

	// ErrInactiveResource возвращается, когда стол или место отключены
	ErrInactiveResource = errors.New("create_booking: resource is inactive")

	// ErrOutsideOperatingHours возвращается, когда бронирование выходит за часы работы
	ErrOutsideOperatingHours = errors.New("create_booking: outside operating hours")

	// ErrPolicyDenied возвращается, когда бронирование запрещено политикой
	ErrPolicyDenied = errors.New("create_booking: denied by booking policy")

	// ErrConflict возвращается, когда ресурс уже занят на пересекающийся интервал
	ErrConflict = errors.New("create_booking: resource is already booked for this time")

	// ErrVenueNotBookable возвращается, когда площадка не одобрена или отключена
	ErrVenueNotBookable = errors.New("create_booking: venue is not bookable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
