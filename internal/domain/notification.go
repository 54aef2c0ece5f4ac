package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Notification is an outbox row handed to the notification collaborator.
// DedupeKey is unique so retried confirmations never enqueue twice.
type Notification struct {
	ID          uuid.UUID
	DedupeKey   string
	EventType   string
	Payload     []byte
	Attempts    int
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// BookingConfirmationKey is the dedupe key of the confirmation for a reservation
func BookingConfirmationKey(reservationID uuid.UUID) string {
	return EventBookingConfirmation + ":" + reservationID.String()
}

// BookingConfirmationPayload is the JSON body of a booking confirmation request.
type BookingConfirmationPayload struct {
	ReservationID    string    `json:"reservationId"`
	UserID           int64     `json:"userId"`
	VenueID          int64     `json:"venueId"`
	VenueName        string    `json:"venueName"`
	TableName        string    `json:"tableName,omitempty"`
	SeatLabels       []string  `json:"seatLabels,omitempty"`
	SeatCount        int       `json:"seatCount"`
	StartAt          time.Time `json:"startAt"`
	EndAt            time.Time `json:"endAt"`
	Timezone         string    `json:"timezone"`
	TotalChargeCents int64     `json:"totalChargeCents"`
}

// NewBookingConfirmation builds the outbox row confirming res.
// timezone is the venue zone the recipient should see times in.
func NewBookingConfirmation(res *Reservation, timezone string) (*Notification, error) {
	payload, err := json.Marshal(BookingConfirmationPayload{
		ReservationID:    res.ID.String(),
		UserID:           res.UserID,
		VenueID:          res.VenueID,
		VenueName:        res.VenueName,
		TableName:        res.TableName,
		SeatLabels:       res.SeatLabels,
		SeatCount:        res.SeatCount,
		StartAt:          res.StartAt.UTC(),
		EndAt:            res.EndAt.UTC(),
		Timezone:         timezone,
		TotalChargeCents: res.TotalChargeCents,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal booking confirmation %s: %w", res.ID, err)
	}

	return &Notification{
		ID:        uuid.New(),
		DedupeKey: BookingConfirmationKey(res.ID),
		EventType: EventBookingConfirmation,
		Payload:   payload,
	}, nil
}
