package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestInterval_Overlaps(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	a := Interval{Start: base, End: base.Add(time.Hour)}

	assert.True(t, a.Overlaps(Interval{Start: base.Add(30 * time.Minute), End: base.Add(90 * time.Minute)}))
	assert.True(t, a.Overlaps(Interval{Start: base.Add(-time.Hour), End: base.Add(time.Minute)}))
	assert.False(t, a.Overlaps(Interval{Start: base.Add(time.Hour), End: base.Add(2 * time.Hour)}))
	assert.False(t, a.Overlaps(Interval{Start: base.Add(-time.Hour), End: base}))
}

func TestReservation_BlocksAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.True(t, (&Reservation{Status: StatusActive}).BlocksAt(now))
	assert.True(t, (&Reservation{Status: StatusPending, ExpiresAt: &future}).BlocksAt(now))
	assert.False(t, (&Reservation{Status: StatusPending, ExpiresAt: &past}).BlocksAt(now))
	assert.False(t, (&Reservation{Status: StatusPending, ExpiresAt: &now}).BlocksAt(now))
	assert.False(t, (&Reservation{Status: StatusCancelled}).BlocksAt(now))
}

func TestBookingConfirmationKey(t *testing.T) {
	id := uuid.MustParse("6f1c1a4e-2b7a-4c8e-9b1a-1e2d3c4b5a69")
	assert.Equal(t, "booking_confirmation:6f1c1a4e-2b7a-4c8e-9b1a-1e2d3c4b5a69", BookingConfirmationKey(id))
}

func TestNewBookingConfirmation(t *testing.T) {
	id := uuid.MustParse("6f1c2d4e-0000-4000-8000-000000000001")
	res := &Reservation{
		ID:         id,
		UserID:     7,
		VenueID:    3,
		VenueName:  "Blue Room",
		SeatLabels: []string{"A1", "A2"},
		SeatCount:  2,
		StartAt:    time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		EndAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	n, err := NewBookingConfirmation(res, "America/New_York")
	assert.NoError(t, err)
	assert.Equal(t, "booking_confirmation:"+id.String(), n.DedupeKey)
	assert.Equal(t, EventBookingConfirmation, n.EventType)
	assert.Contains(t, string(n.Payload), `"reservationId":"`+id.String()+`"`)
	assert.Contains(t, string(n.Payload), `"seatLabels":["A1","A2"]`)
	assert.Contains(t, string(n.Payload), `"timezone":"America/New_York"`)
}
