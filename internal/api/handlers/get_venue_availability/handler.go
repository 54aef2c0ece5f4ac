package get_venue_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SeatReservationService/internal/api/handlers"
	getVenueAvailability "github.com/m04kA/SMC-SeatReservationService/internal/usecase/get_venue_availability"
)

const (
	msgInvalidQuery = "некорректные параметры запроса: ожидается venueIds=1,2,3 и необязательный seats"
)

type Handler struct {
	useCase GetVenueAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetVenueAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/venues/availability?venueIds=1,2&seats=2
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req, err := ParseQuery(query.Get("venueIds"), query.Get("seats"))
	if err != nil {
		h.logger.Warn("GET /venues/availability - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		if errors.Is(err, getVenueAvailability.ErrInvalidInput) {
			handlers.RespondBadRequest(w, msgInvalidQuery)
			return
		}
		h.logger.Error("GET /venues/availability - Failed: venues=%v, error=%v", req.VenueIDs, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
