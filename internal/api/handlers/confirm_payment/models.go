package confirm_payment

import (
	confirmPayment "github.com/m04kA/SMC-SeatReservationService/internal/usecase/confirm_payment"
)

// ConfirmPaymentRequest HTTP request model
type ConfirmPaymentRequest struct {
	PaymentRef string `json:"paymentRef"`
}

// ConfirmPaymentResponse HTTP response model
type ConfirmPaymentResponse struct {
	ReservationID string `json:"reservationId"`
	Status        string `json:"status"`
	AlreadyActive bool   `json:"alreadyActive"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *confirmPayment.Response) *ConfirmPaymentResponse {
	return &ConfirmPaymentResponse{
		ReservationID: resp.ReservationID.String(),
		Status:        resp.Status,
		AlreadyActive: resp.AlreadyActive,
	}
}
