// Package civiltime converts between absolute instants and wall-clock time in IANA zones.
//
// Wall times that fall into a DST gap resolve to the transition instant, i.e. the
// first valid instant after the gap. Wall times that occur twice on a fall-back
// day resolve to their first occurrence. Neither case relies on time.Date, whose
// choice for such inputs is unspecified.
package civiltime

import (
	"fmt"
	"sync"
	"time"

	// Embedded zone database so containers without /usr/share/zoneinfo still resolve venues.
	_ "time/tzdata"
)

// DefaultTimezone is used when a venue has no usable zone.
const DefaultTimezone = "America/New_York"

// QuarterHour is the rounding step of RoundUpToQuarterHour.
const QuarterHour = 15 * time.Minute

// Parts is the civil breakdown of an instant in a zone.
type Parts struct {
	Year    int
	Month   time.Month
	Day     int
	Hour    int
	Minute  int
	Weekday time.Weekday
}

// PartsInZone returns the wall clock of t in loc. It never consults the host zone.
func PartsInZone(t time.Time, loc *time.Location) Parts {
	lt := t.In(loc)
	return Parts{
		Year:    lt.Year(),
		Month:   lt.Month(),
		Day:     lt.Day(),
		Hour:    lt.Hour(),
		Minute:  lt.Minute(),
		Weekday: lt.Weekday(),
	}
}

// Date is a calendar date without zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the civil date of t in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	p := PartsInZone(t, loc)
	return Date{Year: p.Year, Month: p.Month, Day: p.Day}
}

// NewDate normalizes y-m-d the way time.Date does (e.g. Jan 32 is Feb 1).
func NewDate(y int, m time.Month, d int) Date {
	n := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	return Date{Year: n.Year(), Month: n.Month(), Day: n.Day()}
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("civiltime: invalid date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// Weekday of the date. Calendar weekdays do not depend on the zone.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Weekday()
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ToInstant resolves a wall clock in loc to an absolute instant using the
// package DST policy. Overflowing fields are normalized first.
func ToInstant(loc *time.Location, year int, month time.Month, day, hour, minute int) time.Time {
	// Wall clock read as if it were UTC; candidates are wall - offset.
	wall := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)

	_, offBefore := wall.Add(-24 * time.Hour).In(loc).Zone()
	_, offAfter := wall.Add(24 * time.Hour).In(loc).Zone()

	var best time.Time
	found := false
	for _, off := range []int{offBefore, offAfter} {
		candidate := wall.Add(-time.Duration(off) * time.Second)
		if !sameWallClock(candidate.In(loc), wall) {
			continue
		}
		if !found || candidate.Before(best) {
			best = candidate
			found = true
		}
	}
	if found {
		return best
	}

	// Gap: the wall clock was skipped. Read it with the pre-transition offset,
	// which lands after the transition, then snap back to the transition itself.
	shifted := wall.Add(-time.Duration(offBefore) * time.Second).In(loc)
	start, _ := shifted.ZoneBounds()
	if start.IsZero() || !start.Before(shifted) {
		return shifted.UTC()
	}
	return start.UTC()
}

// StartOfDay is the instant of 00:00 on d in loc.
func StartOfDay(loc *time.Location, d Date) time.Time {
	return ToInstant(loc, d.Year, d.Month, d.Day, 0, 0)
}

// RoundUpToQuarterHour returns t unchanged when it sits exactly on a 15-minute
// boundary, otherwise the next boundary. Boundaries are absolute (UTC-aligned).
func RoundUpToQuarterHour(t time.Time) time.Time {
	truncated := t.Truncate(QuarterHour)
	if truncated.Equal(t) {
		return t
	}
	return truncated.Add(QuarterHour)
}

func sameWallClock(local time.Time, wall time.Time) bool {
	return local.Year() == wall.Year() &&
		local.Month() == wall.Month() &&
		local.Day() == wall.Day() &&
		local.Hour() == wall.Hour() &&
		local.Minute() == wall.Minute()
}

// Zones resolves and caches IANA locations with a fallback zone.
type Zones struct {
	fallbackName string
	fallback     *time.Location

	mu    sync.RWMutex
	cache map[string]*time.Location
}

// NewZones creates a resolver. An unloadable fallback name degrades to DefaultTimezone, then UTC.
func NewZones(fallbackName string) *Zones {
	z := &Zones{cache: make(map[string]*time.Location)}

	for _, name := range []string{fallbackName, DefaultTimezone} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			z.fallbackName = name
			z.fallback = loc
			break
		}
	}
	if z.fallback == nil {
		z.fallbackName = "UTC"
		z.fallback = time.UTC
	}

	return z
}

// Fallback returns the fallback location name.
func (z *Zones) Fallback() string {
	return z.fallbackName
}

// Resolve returns the location for name. ok is false when the fallback was used
// because name was empty or unknown; callers should report that as bad venue data.
func (z *Zones) Resolve(name string) (loc *time.Location, ok bool) {
	if name == "" {
		return z.fallback, false
	}

	z.mu.RLock()
	cached, hit := z.cache[name]
	z.mu.RUnlock()
	if hit {
		if cached == nil {
			return z.fallback, false
		}
		return cached, true
	}

	loaded, err := time.LoadLocation(name)

	z.mu.Lock()
	if err != nil {
		// nil marks a known-bad name
		z.cache[name] = nil
	} else {
		z.cache[name] = loaded
	}
	z.mu.Unlock()

	if err != nil {
		return z.fallback, false
	}
	return loaded, true
}
