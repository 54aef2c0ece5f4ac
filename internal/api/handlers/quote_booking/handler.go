package quote_booking

import (
	"net/http"

	"github.com/m04kA/SMC-SeatReservationService/internal/api/handlers"
	createBookingHandler "github.com/m04kA/SMC-SeatReservationService/internal/api/handlers/create_booking"
	"github.com/m04kA/SMC-SeatReservationService/internal/api/middleware"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTime        = "некорректный формат времени, ожидается RFC 3339"
	msgMissingUserID      = "отсутствует ID пользователя"
)

type Handler struct {
	useCase QuoteUseCase
	logger  Logger
}

func NewHandler(useCase QuoteUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/quote
// Тело запроса совпадает с POST /bookings, бронирование не создаётся
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/quote - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req createBookingHandler.CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/quote - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings/quote - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Quote(r.Context(), useCaseReq)
	if err != nil {
		status, msg := createBookingHandler.StatusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("POST /bookings/quote - Failed to quote: user_id=%d, venue_id=%d, error=%v",
				userID, req.VenueID, err)
			handlers.RespondInternalError(w)
			return
		}

		h.logger.Warn("POST /bookings/quote - Rejected: user_id=%d, venue_id=%d, status=%d, error=%v",
			userID, req.VenueID, status, err)
		handlers.RespondError(w, status, msg)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
