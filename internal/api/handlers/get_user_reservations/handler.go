package get_user_reservations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SeatReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-SeatReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-SeatReservationService/internal/service/reservations"
	"github.com/m04kA/SMC-SeatReservationService/internal/service/reservations/models"
)

const (
	msgInvalidUserID = "некорректный ID пользователя"
	msgInvalidStatus = "некорректный статус, ожидается pending, active или cancelled"
	msgMissingUserID = "отсутствует ID пользователя"
	msgForbidden     = "доступ запрещен"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/users/{userId}/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем userId из URL
	userID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /users/{userId}/reservations - Invalid user ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	// Пользователь видит только свою историю
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	if callerID != userID {
		h.logger.Warn("GET /users/{userId}/reservations - Access denied: user_id=%d, caller_id=%d", userID, callerID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	// Получаем status из query параметров (опционально)
	var statusPtr *string
	if status := r.URL.Query().Get("status"); status != "" {
		statusPtr = &status
	}

	result, err := h.service.GetUserReservations(r.Context(), &models.GetUserReservationsRequest{
		UserID: userID,
		Status: statusPtr,
	})
	if err != nil {
		if errors.Is(err, reservations.ErrInvalidInput) {
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
		h.logger.Error("GET /users/{userId}/reservations - Failed to get reservations: user_id=%d, error=%v",
			userID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /users/{userId}/reservations - Reservations retrieved: user_id=%d, count=%d",
		userID, len(result.Reservations))
	handlers.RespondJSON(w, http.StatusOK, result.Reservations)
}
