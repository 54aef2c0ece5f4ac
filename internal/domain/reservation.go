package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus represents the lifecycle state of a reservation
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusActive    ReservationStatus = "active"
	StatusCancelled ReservationStatus = "cancelled"
)

// Reservation is one booking of a table (group mode) or of one or more seats (individual mode).
// Every requested seat is kept in SeatIDs; SeatID holds the first one for compatibility with listings.
type Reservation struct {
	ID        uuid.UUID
	VenueID   int64
	TableID   *int64
	SeatID    *int64
	SeatIDs   []int64
	UserID    int64
	StartAt   time.Time
	EndAt     time.Time
	SeatCount int
	Status    ReservationStatus
	ExpiresAt *time.Time // set for pending reservations only

	SubtotalCents      int64
	ProcessingFeeCents int64
	TotalChargeCents   int64
	CommissionCents    int64
	VenuePayoutCents   int64
	PaymentRef         *string

	// Denormalized display data
	VenueName  string
	TableName  string
	SeatLabels []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Interval returns [StartAt, EndAt)
func (r *Reservation) Interval() Interval {
	return Interval{Start: r.StartAt, End: r.EndAt}
}

// IsCancelled returns true if the reservation has been cancelled
func (r *Reservation) IsCancelled() bool {
	return r.Status == StatusCancelled
}

// IsExpired returns true for a pending reservation whose payment window has passed
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.Status == StatusPending && r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}

// BlocksAt returns true if the reservation still holds its resources at now
func (r *Reservation) BlocksAt(now time.Time) bool {
	return !r.IsCancelled() && !r.IsExpired(now)
}

// Mode derives the booking mode from the targeted resource
func (r *Reservation) Mode() BookingMode {
	if len(r.SeatIDs) > 0 || r.SeatID != nil {
		return ModeIndividual
	}
	return ModeGroup
}

// ResourceSelector targets either specific seats or a whole table (seat_id empty).
type ResourceSelector struct {
	SeatIDs []int64
	TableID int64
}

// IsTable returns true for a group selector
func (s ResourceSelector) IsTable() bool {
	return len(s.SeatIDs) == 0 && s.TableID > 0
}

// IsEmpty returns true if nothing is targeted
func (s ResourceSelector) IsEmpty() bool {
	return len(s.SeatIDs) == 0 && s.TableID <= 0
}

// OccupiedSlot is the minimal projection used by the availability scan.
type OccupiedSlot struct {
	VenueID   int64
	StartAt   time.Time
	EndAt     time.Time
	SeatCount int
}
