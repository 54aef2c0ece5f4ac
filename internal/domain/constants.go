package domain

import "time"

// Availability scan parameters
const (
	AvailabilityStep    = 15 * time.Minute
	AvailabilityWindow  = time.Hour
	AvailabilityHorizon = 12 * time.Hour
)

// Business validation constants
const (
	MaxSeatsPerBooking   = 50
	MaxBookingDuration   = 25 * time.Hour // a whole fall-back day
	MaxVenuesPerListing  = 100
	DefaultRequiredSeats = 1
)

// Notification event types
const (
	EventBookingConfirmation = "booking_confirmation"
)

// BlockingStatuses statuses that may hold a resource.
// A pending reservation only blocks until its expiry.
var BlockingStatuses = []ReservationStatus{
	StatusPending,
	StatusActive,
}
