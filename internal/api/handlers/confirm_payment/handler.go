package confirm_payment

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SeatReservationService/internal/api/handlers"
	confirmPayment "github.com/m04kA/SMC-SeatReservationService/internal/usecase/confirm_payment"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidReservationID = "некорректный ID бронирования"
	msgInvalidInput         = "некорректная ссылка на платёж"
	msgNotFound             = "бронирование не найдено"
	msgCancelled            = "бронирование отменено"
	msgExpired              = "срок оплаты бронирования истёк"
)

type Handler struct {
	useCase ConfirmPaymentUseCase
	logger  Logger
}

func NewHandler(useCase ConfirmPaymentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /internal/v1/reservations/{reservationId}/confirm-payment
// Вызывается платёжным сервисом после успешной оплаты; повторный вызов безопасен
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := uuid.Parse(mux.Vars(r)["reservationId"])
	if err != nil {
		h.logger.Warn("POST /reservations/{id}/confirm-payment - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	var req ConfirmPaymentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations/{id}/confirm-payment - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &confirmPayment.Request{
		ReservationID: reservationID,
		PaymentRef:    req.PaymentRef,
	})
	if err != nil {
		switch {
		case errors.Is(err, confirmPayment.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, confirmPayment.ErrReservationNotFound):
			h.logger.Warn("POST /reservations/{id}/confirm-payment - Not found: reservation_id=%s", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, confirmPayment.ErrReservationCancelled):
			h.logger.Warn("POST /reservations/{id}/confirm-payment - Cancelled: reservation_id=%s", reservationID)
			handlers.RespondConflict(w, msgCancelled)

		case errors.Is(err, confirmPayment.ErrReservationExpired):
			h.logger.Warn("POST /reservations/{id}/confirm-payment - Expired: reservation_id=%s", reservationID)
			handlers.RespondConflict(w, msgExpired)

		default:
			h.logger.Error("POST /reservations/{id}/confirm-payment - Failed: reservation_id=%s, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations/{id}/confirm-payment - Confirmed: reservation_id=%s, already_active=%t",
		reservationID, result.AlreadyActive)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
