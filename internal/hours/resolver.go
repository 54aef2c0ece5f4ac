// Package hours turns weekly venue rules into absolute day bounds and open/closed judgments.
package hours

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SeatReservationService/internal/civiltime"
	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	"github.com/m04kA/SMC-SeatReservationService/pkg/types"
)

const (
	textClosedToday = "Closed today"
	textOpen24Hours = "Open 24 hours"
)

// Validation is the result of checking a reservation against canonical hours.
type Validation struct {
	IsValid bool
	Err     error
}

// Resolver is safe for concurrent use.
type Resolver struct {
	zones  *civiltime.Zones
	logger Logger
}

// NewResolver creates a resolver that falls back to zones' default for unknown venue timezones.
func NewResolver(zones *civiltime.Zones, logger Logger) *Resolver {
	return &Resolver{zones: zones, logger: logger}
}

// Location returns the venue zone, logging a data-quality warning on fallback.
func (r *Resolver) Location(h domain.CanonicalHours) *time.Location {
	loc, ok := r.zones.Resolve(h.Timezone)
	if !ok {
		r.logger.Warn("Hours: venue=%d has unusable timezone %q, falling back to %s",
			h.VenueID, h.Timezone, r.zones.Fallback())
	}
	return loc
}

// DayBounds returns the absolute range of the rule for date. Start is the opening
// instant; End is the last millisecond before closing, where "24:00" closes at the
// next civil midnight. DST days yield 23 or 25 hours of absolute time.
// ok is false if the venue is closed on date or the rule is malformed.
func (r *Resolver) DayBounds(date civiltime.Date, h domain.CanonicalHours) (domain.DayBounds, bool) {
	return r.dayBounds(date, h, r.Location(h))
}

func (r *Resolver) dayBounds(date civiltime.Date, h domain.CanonicalHours, loc *time.Location) (domain.DayBounds, bool) {
	rule, ok := h.RuleFor(date.Weekday())
	if !ok {
		return domain.DayBounds{}, false
	}

	openMin, closeMin, ok := r.ruleMinutes(h.VenueID, rule)
	if !ok {
		return domain.DayBounds{}, false
	}

	start := civiltime.ToInstant(loc, date.Year, date.Month, date.Day, openMin/60, openMin%60)

	var end time.Time
	if closeMin == types.MinutesPerDay {
		end = civiltime.StartOfDay(loc, date.AddDays(1))
	} else {
		end = civiltime.ToInstant(loc, date.Year, date.Month, date.Day, closeMin/60, closeMin%60)
	}

	return domain.DayBounds{Start: start, End: end.Add(-time.Millisecond)}, true
}

// ruleMinutes validates a rule. Close before or equal to open is rejected, never wrapped overnight.
func (r *Resolver) ruleMinutes(venueID int64, rule domain.WeeklyHourRule) (int, int, bool) {
	openMin, okOpen := rule.OpenTime.Minutes()
	closeMin, okClose := rule.CloseTime.Minutes()
	if !okOpen || !okClose {
		r.logger.Warn("Hours: venue=%d has malformed rule for %s: open=%q close=%q",
			venueID, rule.DayOfWeek, rule.OpenTime, rule.CloseTime)
		return 0, 0, false
	}
	if !rule.CloseTime.IsAfter(rule.OpenTime) {
		r.logger.Warn("Hours: venue=%d has close %s not after open %s on %s, treating day as closed",
			venueID, rule.CloseTime, rule.OpenTime, rule.DayOfWeek)
		return 0, 0, false
	}
	return openMin, closeMin, true
}

// OpenStatus judges whether the venue is open at t.
func (r *Resolver) OpenStatus(h domain.CanonicalHours, t time.Time) domain.OpenStatus {
	if !h.HasRules() {
		return domain.OpenStatus{IsOpen: true, Status: domain.OpenStatusAlwaysOpen, TodayHoursText: textOpen24Hours}
	}

	loc := r.Location(h)
	date := civiltime.DateOf(t, loc)

	bounds, ok := r.dayBounds(date, h, loc)
	if !ok {
		return domain.OpenStatus{IsOpen: false, Status: domain.OpenStatusClosedToday, TodayHoursText: textClosedToday}
	}

	rule, _ := h.RuleFor(date.Weekday())
	text := hoursText(rule)

	switch {
	case t.Before(bounds.Start):
		return domain.OpenStatus{IsOpen: false, Status: domain.OpenStatusOpensLater, TodayHoursText: text}
	case t.After(bounds.End):
		return domain.OpenStatus{IsOpen: false, Status: domain.OpenStatusClosed, TodayHoursText: text}
	default:
		return domain.OpenStatus{IsOpen: true, Status: domain.OpenStatusOpen, TodayHoursText: text}
	}
}

// IsOpenAt is OpenStatus without the presentation fields.
func (r *Resolver) IsOpenAt(h domain.CanonicalHours, t time.Time) bool {
	return r.OpenStatus(h, t).IsOpen
}

// ValidateReservation accepts [start, end) only if it fits in the bounds of the
// civil date start falls on. Venues without weekly hours are treated as always open.
func (r *Resolver) ValidateReservation(start, end time.Time, h domain.CanonicalHours) Validation {
	if !end.After(start) {
		return Validation{IsValid: false, Err: ErrInvalidRange}
	}
	if !h.HasRules() {
		return Validation{IsValid: true}
	}

	loc := r.Location(h)
	date := civiltime.DateOf(start, loc)

	bounds, ok := r.dayBounds(date, h, loc)
	if !ok {
		return Validation{IsValid: false, Err: fmt.Errorf("%w: %s", ErrClosedOnDate, date)}
	}

	if start.Before(bounds.Start) {
		return Validation{IsValid: false, Err: fmt.Errorf("%w: opens at %s", ErrBeforeOpening,
			bounds.Start.In(loc).Format(time.RFC3339))}
	}

	// End is exclusive, bounds.End is the last included millisecond.
	if end.After(bounds.End.Add(time.Millisecond)) {
		return Validation{IsValid: false, Err: fmt.Errorf("%w: closes at %s", ErrAfterClosing,
			bounds.End.Add(time.Millisecond).In(loc).Format(time.RFC3339))}
	}

	return Validation{IsValid: true}
}

func hoursText(rule domain.WeeklyHourRule) string {
	openMin, _ := rule.OpenTime.Minutes()
	closeMin, _ := rule.CloseTime.Minutes()
	if openMin == 0 && rule.CloseTime.IsEndOfDay() {
		return textOpen24Hours
	}
	return types.FormatMinutes(openMin) + " - " + types.FormatMinutes(closeMin)
}
