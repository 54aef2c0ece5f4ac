package get_venue_availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	getVenueAvailability "github.com/m04kA/SMC-SeatReservationService/internal/usecase/get_venue_availability"
)

// VenueAvailabilityResponse HTTP response model
type VenueAvailabilityResponse struct {
	VenueID         int64   `json:"venueId"`
	Capacity        int     `json:"capacity"`
	Kind            string  `json:"kind"`
	Label           string  `json:"label"`
	NextAvailableAt *string `json:"nextAvailableAt,omitempty"`
}

// ParseQuery разбирает ?venueIds=1,2,3&seats=2
func ParseQuery(venueIDsRaw, seatsRaw string) (*getVenueAvailability.Request, error) {
	req := &getVenueAvailability.Request{}

	for _, part := range strings.Split(venueIDsRaw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("venueIds: %w", err)
		}
		req.VenueIDs = append(req.VenueIDs, id)
	}

	if seatsRaw != "" {
		seats, err := strconv.Atoi(seatsRaw)
		if err != nil {
			return nil, fmt.Errorf("seats: %w", err)
		}
		req.RequiredSeats = seats
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getVenueAvailability.Response) []VenueAvailabilityResponse {
	out := make([]VenueAvailabilityResponse, 0, len(resp.Items))
	for _, item := range resp.Items {
		v := VenueAvailabilityResponse{
			VenueID:  item.VenueID,
			Capacity: item.Capacity,
			Kind:     string(item.Kind),
			Label:    item.Text,
		}
		if item.NextAvailableAt != nil {
			at := item.NextAvailableAt.UTC().Format(time.RFC3339)
			v.NextAvailableAt = &at
		}
		out = append(out, v)
	}
	return out
}
