// Package availability annotates venue listings with the earliest moment enough seats are free.
package availability

import (
	"time"

	"github.com/m04kA/SMC-SeatReservationService/internal/civiltime"
	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	"github.com/m04kA/SMC-SeatReservationService/pkg/types"
)

const (
	TextAvailableNow    = "Available now"
	TextSoldOut         = "Sold out for now"
	textNextAvailableAt = "Next available at "
)

// Kind is the machine-readable part of a label.
type Kind string

const (
	KindAvailableNow  Kind = "available_now"
	KindNextAvailable Kind = "next_available"
	KindSoldOut       Kind = "sold_out"
)

// Label is shown next to a venue in listings.
type Label struct {
	Kind            Kind
	Text            string
	NextAvailableAt *time.Time
}

// Input describes one venue.
type Input struct {
	Capacity      int
	RequiredSeats int
	Reservations  []domain.OccupiedSlot
	Location      *time.Location
	// IsOpenAt, when set, skips steps at which the venue is closed.
	IsOpenAt func(t time.Time) bool
}

// Compute scans 1-hour windows in 15-minute steps from the next quarter hour,
// up to the horizon, and labels the first window with enough free seats.
func Compute(now time.Time, in Input) Label {
	if in.Capacity <= 0 {
		return soldOut()
	}

	required := in.RequiredSeats
	if required <= 0 {
		required = domain.DefaultRequiredSeats
	}
	if required > in.Capacity {
		return soldOut()
	}

	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	start := civiltime.RoundUpToQuarterHour(now)

	for offset := time.Duration(0); offset < domain.AvailabilityHorizon; offset += domain.AvailabilityStep {
		at := start.Add(offset)

		if in.IsOpenAt != nil && !in.IsOpenAt(at) {
			continue
		}

		window := domain.Interval{Start: at, End: at.Add(domain.AvailabilityWindow)}
		if in.Capacity-bookedSeats(in.Reservations, window) < required {
			continue
		}

		if offset == 0 {
			return Label{Kind: KindAvailableNow, Text: TextAvailableNow}
		}

		next := at
		return Label{
			Kind:            KindNextAvailable,
			Text:            textNextAvailableAt + clockText(at, loc),
			NextAvailableAt: &next,
		}
	}

	return soldOut()
}

// ScanRange is the span of reservations Compute may look at for now.
func ScanRange(now time.Time) domain.Interval {
	start := civiltime.RoundUpToQuarterHour(now)
	return domain.Interval{Start: start, End: start.Add(domain.AvailabilityHorizon + domain.AvailabilityWindow)}
}

func bookedSeats(reservations []domain.OccupiedSlot, window domain.Interval) int {
	booked := 0
	for _, r := range reservations {
		if window.Overlaps(domain.Interval{Start: r.StartAt, End: r.EndAt}) {
			booked += r.SeatCount
		}
	}
	return booked
}

func clockText(t time.Time, loc *time.Location) string {
	p := civiltime.PartsInZone(t, loc)
	return types.FormatMinutes(p.Hour*60 + p.Minute)
}

func soldOut() Label {
	return Label{Kind: KindSoldOut, Text: TextSoldOut}
}
