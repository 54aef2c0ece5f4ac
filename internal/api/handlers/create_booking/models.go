package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	createBooking "github.com/m04kA/SMC-SeatReservationService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
// individual: seatIds; group: tableId + seatCount
type CreateBookingRequest struct {
	VenueID   int64   `json:"venueId"`
	Mode      string  `json:"mode"`
	SeatIDs   []int64 `json:"seatIds,omitempty"`
	TableID   int64   `json:"tableId,omitempty"`
	SeatCount int     `json:"seatCount,omitempty"`
	StartAt   string  `json:"startAt"` // RFC 3339, "2025-02-10T19:00:00Z"
	EndAt     string  `json:"endAt"`
}

// PricingResponse разбивка стоимости в центах
type PricingResponse struct {
	SubtotalCents         int64 `json:"subtotalCents"`
	ProcessingFeeCents    int64 `json:"processingFeeCents"`
	TotalChargeCents      int64 `json:"totalChargeCents"`
	CommissionCents       int64 `json:"commissionCents"`
	PlatformWithheldCents int64 `json:"platformWithheldCents"`
	VenuePayoutCents      int64 `json:"venuePayoutCents"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID         string          `json:"id"`
	VenueID    int64           `json:"venueId"`
	TableID    *int64          `json:"tableId,omitempty"`
	SeatIDs    []int64         `json:"seatIds,omitempty"`
	UserID     int64           `json:"userId"`
	Mode       string          `json:"mode"`
	StartAt    string          `json:"startAt"`
	EndAt      string          `json:"endAt"`
	SeatCount  int             `json:"seatCount"`
	Status     string          `json:"status"`
	ExpiresAt  *string         `json:"expiresAt,omitempty"`
	Timezone   string          `json:"timezone"`
	Pricing    PricingResponse `json:"pricing"`
	VenueName  string          `json:"venueName"`
	TableName  string          `json:"tableName,omitempty"`
	SeatLabels []string        `json:"seatLabels,omitempty"`
	CreatedAt  string          `json:"createdAt"`
	UpdatedAt  string          `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	startAt, err := time.Parse(time.RFC3339, r.StartAt)
	if err != nil {
		return nil, fmt.Errorf("startAt: %w", err)
	}

	endAt, err := time.Parse(time.RFC3339, r.EndAt)
	if err != nil {
		return nil, fmt.Errorf("endAt: %w", err)
	}

	return &createBooking.Request{
		UserID:    userID,
		VenueID:   r.VenueID,
		Mode:      domain.BookingMode(r.Mode),
		SeatIDs:   r.SeatIDs,
		TableID:   r.TableID,
		SeatCount: r.SeatCount,
		StartAt:   startAt,
		EndAt:     endAt,
	}, nil
}

// FromPricing конвертирует разбивку стоимости
func FromPricing(p domain.PricingResult) PricingResponse {
	return PricingResponse{
		SubtotalCents:         p.SubtotalCents,
		ProcessingFeeCents:    p.ProcessingFeeCents,
		TotalChargeCents:      p.TotalChargeCents,
		CommissionCents:       p.CommissionCents,
		PlatformWithheldCents: p.PlatformWithheldCents,
		VenuePayoutCents:      p.VenuePayoutCents,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	out := &BookingResponse{
		ID:         resp.ID.String(),
		VenueID:    resp.VenueID,
		TableID:    resp.TableID,
		SeatIDs:    resp.SeatIDs,
		UserID:     resp.UserID,
		Mode:       resp.Mode,
		StartAt:    resp.StartAt.UTC().Format(time.RFC3339),
		EndAt:      resp.EndAt.UTC().Format(time.RFC3339),
		SeatCount:  resp.SeatCount,
		Status:     resp.Status,
		Timezone:   resp.Timezone,
		Pricing:    FromPricing(resp.Pricing),
		VenueName:  resp.VenueName,
		TableName:  resp.TableName,
		SeatLabels: resp.SeatLabels,
		CreatedAt:  resp.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  resp.UpdatedAt.UTC().Format(time.RFC3339),
	}

	if resp.ExpiresAt != nil {
		expiresAt := resp.ExpiresAt.UTC().Format(time.RFC3339)
		out.ExpiresAt = &expiresAt
	}

	return out
}
