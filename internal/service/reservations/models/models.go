package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid reservation status")
)

// StatusExpired отображаемый статус pending бронирования с истёкшим окном оплаты
const StatusExpired = "expired"

// Request модели

// GetUserReservationsRequest запрос на получение бронирований пользователя
type GetUserReservationsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// Response модели

// PricingResponse разбивка стоимости
type PricingResponse struct {
	SubtotalCents      int64 `json:"subtotalCents"`
	ProcessingFeeCents int64 `json:"processingFeeCents"`
	TotalChargeCents   int64 `json:"totalChargeCents"`
	CommissionCents    int64 `json:"commissionCents"`
	VenuePayoutCents   int64 `json:"venuePayoutCents"`
}

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID        string     `json:"id"`
	VenueID   int64      `json:"venueId"`
	TableID   *int64     `json:"tableId,omitempty"`
	SeatIDs   []int64    `json:"seatIds"`
	UserID    int64      `json:"userId"`
	Mode      string     `json:"mode"`
	StartAt   time.Time  `json:"startAt"`
	EndAt     time.Time  `json:"endAt"`
	SeatCount int        `json:"seatCount"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`

	Pricing    PricingResponse `json:"pricing"`
	PaymentRef *string         `json:"paymentRef,omitempty"`

	// Денормализованные данные
	VenueName  string   `json:"venueName"`
	TableName  string   `json:"tableName,omitempty"`
	SeatLabels []string `json:"seatLabels,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationListResponse ответ со списком бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// Методы конвертации

// FromDomainReservation конвертирует domain модель в DTO
// Pending бронирование с истёкшим окном оплаты отображается как expired
func FromDomainReservation(r *domain.Reservation, now time.Time) *ReservationResponse {
	if r == nil {
		return nil
	}

	seatIDs := r.SeatIDs
	if seatIDs == nil {
		seatIDs = []int64{}
	}

	status := string(r.Status)
	if r.IsExpired(now) {
		status = StatusExpired
	}

	return &ReservationResponse{
		ID:        r.ID.String(),
		VenueID:   r.VenueID,
		TableID:   r.TableID,
		SeatIDs:   seatIDs,
		UserID:    r.UserID,
		Mode:      string(r.Mode()),
		StartAt:   r.StartAt.UTC(),
		EndAt:     r.EndAt.UTC(),
		SeatCount: r.SeatCount,
		Status:    status,
		ExpiresAt: r.ExpiresAt,
		Pricing: PricingResponse{
			SubtotalCents:      r.SubtotalCents,
			ProcessingFeeCents: r.ProcessingFeeCents,
			TotalChargeCents:   r.TotalChargeCents,
			CommissionCents:    r.CommissionCents,
			VenuePayoutCents:   r.VenuePayoutCents,
		},
		PaymentRef: r.PaymentRef,
		VenueName:  r.VenueName,
		TableName:  r.TableName,
		SeatLabels: r.SeatLabels,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation, now time.Time) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
	}

	for _, r := range reservations {
		resp.Reservations = append(resp.Reservations, *FromDomainReservation(r, now))
	}

	return resp
}

// ToDomainReservationStatus конвертирует строку в domain.ReservationStatus
func ToDomainReservationStatus(status string) (domain.ReservationStatus, error) {
	switch domain.ReservationStatus(status) {
	case domain.StatusPending, domain.StatusActive, domain.StatusCancelled:
		return domain.ReservationStatus(status), nil
	default:
		return "", ErrInvalidStatus
	}
}
