package domain

import (
	"time"

	"github.com/m04kA/SMC-SeatReservationService/pkg/types"
)

// WeeklyHourRule is the opening window of one weekday in venue-local clock time.
// CloseTime may be "24:00". A close before open is invalid and never wraps past midnight.
type WeeklyHourRule struct {
	DayOfWeek time.Weekday    `json:"dayOfWeek"`
	OpenTime  types.TimeString `json:"openTime"`
	CloseTime types.TimeString `json:"closeTime"`
}

// CanonicalHours pairs the weekly rules of a venue with its timezone.
type CanonicalHours struct {
	VenueID     int64            `json:"venueId"`
	Timezone    string           `json:"timezone"`
	WeeklyHours []WeeklyHourRule `json:"weeklyHours"`
}

// HasRules returns false when no weekly hours were configured (default-open venue)
func (h *CanonicalHours) HasRules() bool {
	return len(h.WeeklyHours) > 0
}

// RuleFor returns the rule of the weekday, if any. The first rule wins on duplicates.
func (h *CanonicalHours) RuleFor(day time.Weekday) (WeeklyHourRule, bool) {
	for _, r := range h.WeeklyHours {
		if r.DayOfWeek == day {
			return r, true
		}
	}
	return WeeklyHourRule{}, false
}

// DayBounds is the absolute range of one civil day. End is inclusive (last millisecond).
type DayBounds struct {
	Start time.Time
	End   time.Time
}

// OpenStatusKind is the coarse state shown on venue pages.
type OpenStatusKind string

const (
	OpenStatusOpen        OpenStatusKind = "open"
	OpenStatusOpensLater  OpenStatusKind = "opens_later"
	OpenStatusClosed      OpenStatusKind = "closed"
	OpenStatusClosedToday OpenStatusKind = "closed_today"
	OpenStatusAlwaysOpen  OpenStatusKind = "always_open"
)

// OpenStatus is the live open/closed judgment for an instant.
type OpenStatus struct {
	IsOpen         bool
	Status         OpenStatusKind
	TodayHoursText string
}
