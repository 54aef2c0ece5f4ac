package confirm_payment

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("confirm_payment: invalid input data")

	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("confirm_payment: reservation not found")

	// ErrReservationCancelled возвращается при оплате отменённого бронирования
	ErrReservationCancelled = errors.New("confirm_payment: reservation is cancelled")

	// ErrReservationExpired возвращается, когда срок оплаты истёк
	ErrReservationExpired = errors.New("confirm_payment: payment window expired")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("confirm_payment: internal error")
)
