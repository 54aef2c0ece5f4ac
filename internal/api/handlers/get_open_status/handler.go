package get_open_status

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SeatReservationService/internal/api/handlers"
	getOpenStatus "github.com/m04kA/SMC-SeatReservationService/internal/usecase/get_open_status"
)

const (
	msgInvalidVenueID = "некорректный ID площадки"
	msgVenueNotFound  = "площадка не найдена"
)

// OpenStatusResponse HTTP response model
type OpenStatusResponse struct {
	VenueID        int64  `json:"venueId"`
	Timezone       string `json:"timezone"`
	IsOpen         bool   `json:"isOpen"`
	Status         string `json:"status"`
	TodayHoursText string `json:"todayHoursText"`
}

type Handler struct {
	useCase GetOpenStatusUseCase
	logger  Logger
}

func NewHandler(useCase GetOpenStatusUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/venues/{venueId}/open-status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(mux.Vars(r)["venueId"], 10, 64)
	if err != nil || venueID <= 0 {
		h.logger.Warn("GET /venues/{venueId}/open-status - Invalid venue ID: %q", mux.Vars(r)["venueId"])
		handlers.RespondBadRequest(w, msgInvalidVenueID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), venueID)
	if err != nil {
		switch {
		case errors.Is(err, getOpenStatus.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidVenueID)

		case errors.Is(err, getOpenStatus.ErrVenueNotFound):
			handlers.RespondNotFound(w, msgVenueNotFound)

		default:
			h.logger.Error("GET /venues/{venueId}/open-status - Failed: venue_id=%d, error=%v", venueID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, OpenStatusResponse{
		VenueID:        result.VenueID,
		Timezone:       result.Timezone,
		IsOpen:         result.IsOpen,
		Status:         string(result.Status),
		TodayHoursText: result.TodayHoursText,
	})
}
