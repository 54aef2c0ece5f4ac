package create_booking

import (
	"net/http"

	"github.com/m04kA/SMC-SeatReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-SeatReservationService/internal/api/middleware"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTime        = "некорректный формат времени, ожидается RFC 3339"
	msgMissingUserID      = "отсутствует ID пользователя"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом времени)
	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		status, msg := StatusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, venue_id=%d, error=%v",
				userID, req.VenueID, err)
			handlers.RespondInternalError(w)
			return
		}

		h.logger.Warn("POST /bookings - Rejected: user_id=%d, venue_id=%d, status=%d, error=%v",
			userID, req.VenueID, status, err)
		handlers.RespondError(w, status, msg)
		return
	}

	h.logger.Info("POST /bookings - Booking created: reservation_id=%s, user_id=%d, venue_id=%d, status=%s",
		result.ID, userID, req.VenueID, result.Status)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
