package hours

import "errors"

var (
	// ErrClosedOnDate возвращается, когда на дату начала бронирования у площадки нет рабочих часов
	ErrClosedOnDate = errors.New("hours: venue is closed on this date")

	// ErrBeforeOpening возвращается, когда бронирование начинается раньше открытия
	ErrBeforeOpening = errors.New("hours: reservation starts before opening time")

	// ErrAfterClosing возвращается, когда бронирование заканчивается после закрытия
	ErrAfterClosing = errors.New("hours: reservation ends after closing time")

	// ErrInvalidRange возвращается, когда конец бронирования не позже начала
	ErrInvalidRange = errors.New("hours: reservation end must be after start")
)
