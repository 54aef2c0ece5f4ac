package confirm_payment

import (
	"github.com/google/uuid"
)

// maxPaymentRefLength ограничение длины ссылки на платёж
const maxPaymentRefLength = 255

// Request модель запроса подтверждения оплаты
type Request struct {
	ReservationID uuid.UUID // ID бронирования
	PaymentRef    string    // Идентификатор платежа у процессора
}

// Response модель ответа
type Response struct {
	ReservationID  uuid.UUID
	Status         string
	AlreadyActive  bool // повторный вызов, бронирование уже было активно
	NotificationID string
}
