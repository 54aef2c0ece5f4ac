package quote_booking

import (
	"time"

	createBookingHandler "github.com/m04kA/SMC-SeatReservationService/internal/api/handlers/create_booking"
	createBooking "github.com/m04kA/SMC-SeatReservationService/internal/usecase/create_booking"
)

// QuoteResponse HTTP response model
type QuoteResponse struct {
	VenueID          int64                                `json:"venueId"`
	Mode             string                               `json:"mode"`
	StartAt          string                               `json:"startAt"`
	EndAt            string                               `json:"endAt"`
	SeatCount        int                                  `json:"seatCount"`
	RatePerHourCents int64                                `json:"ratePerHourCents"`
	Timezone         string                               `json:"timezone"`
	Pricing          createBookingHandler.PricingResponse `json:"pricing"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.QuoteResponse) *QuoteResponse {
	return &QuoteResponse{
		VenueID:          resp.VenueID,
		Mode:             resp.Mode,
		StartAt:          resp.StartAt.UTC().Format(time.RFC3339),
		EndAt:            resp.EndAt.UTC().Format(time.RFC3339),
		SeatCount:        resp.SeatCount,
		RatePerHourCents: resp.RatePerHourCents,
		Timezone:         resp.Timezone,
		Pricing:          createBookingHandler.FromPricing(resp.Pricing),
	}
}
