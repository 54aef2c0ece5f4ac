package domain

import "time"

// ApprovalStatus is the onboarding state of a venue.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// BookingMode decides what is bookable at a table.
type BookingMode string

const (
	// ModeIndividual tables are not bookable themselves; their seats are.
	ModeIndividual BookingMode = "individual"
	// ModeGroup tables are booked as one unit at a flat rate.
	ModeGroup BookingMode = "group"
)

// IsValid returns true for a known booking mode
func (m BookingMode) IsValid() bool {
	return m == ModeIndividual || m == ModeGroup
}

// Venue is a place that lists tables and seats.
type Venue struct {
	ID             int64
	Name           string
	Timezone       string // IANA name, may be empty or unknown
	ApprovalStatus ApprovalStatus
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsBookable returns true if the venue passed approval and is not disabled
func (v *Venue) IsBookable() bool {
	return v.ApprovalStatus == ApprovalApproved && v.IsActive
}

// Table belongs to exactly one venue.
type Table struct {
	ID                     int64
	VenueID                int64
	Name                   string
	BookingMode            BookingMode
	TablePricePerHourCents int64 // used in group mode
	SeatCount              int
	IsActive               bool
}

// IsGroupBookable returns true if the whole table can be reserved
func (t *Table) IsGroupBookable() bool {
	return t.BookingMode == ModeGroup
}

// Seat belongs to exactly one table. VenueID and TableMode are denormalized from the table.
type Seat struct {
	ID                int64
	TableID           int64
	VenueID           int64
	Label             string
	PricePerHourCents int64
	IsActive          bool

	TableName     string
	TableMode     BookingMode
	TableIsActive bool
}
