package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	// MinutesPerDay is the clock value of "24:00".
	MinutesPerDay = 24 * 60

	// EndOfDayClock is the only accepted clock value with hour 24.
	EndOfDayClock TimeString = "24:00"

	// lastMinuteClock is bumped to end-of-day when used as a closing time.
	lastMinuteClock TimeString = "23:59"
)

var (
	// ErrInvalidTimeString is returned for strings that are not valid "H:MM" or "HH:MM" clocks.
	ErrInvalidTimeString = errors.New("invalid time string format")

	clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// TimeString is a venue-local wall clock value such as "9:30" or "24:00".
// It is stored as TEXT in the database and never carries a date or zone.
type TimeString string

// NewTimeString formats the wall clock of t as "HH:MM".
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format("15:04"))
}

// NewTimeStringFromString validates s and returns it as a TimeString.
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// ParseClock converts a clock string to minutes since midnight.
// ok is false for malformed input; it never panics on user data.
func ParseClock(s string) (minutes int, ok bool) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}

	if hour < 0 || hour > 24 || minute < 0 || minute > 59 {
		return 0, false
	}
	if hour == 24 && minute != 0 {
		return 0, false
	}

	return hour*60 + minute, true
}

// FormatMinutes renders minutes since midnight as "h:mm AM/PM".
// Values outside a single day wrap around.
func FormatMinutes(minutes int) string {
	minutes %= MinutesPerDay
	if minutes < 0 {
		minutes += MinutesPerDay
	}

	hour := minutes / 60
	minute := minutes % 60

	period := "AM"
	if hour >= 12 {
		period = "PM"
	}

	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}

	return fmt.Sprintf("%d:%02d %s", hour12, minute, period)
}

// IsClockWithinRange reports whether clock lies in [open, close], both ends inclusive.
// A closing value of "23:59" is compared as "24:00" so the whole last minute counts.
// Any unparsable argument yields false.
func IsClockWithinRange(clock, open, closeRaw TimeString) bool {
	c, ok := clock.Minutes()
	if !ok {
		return false
	}
	o, ok := open.Minutes()
	if !ok {
		return false
	}

	closeClock := closeRaw
	if closeClock == lastMinuteClock {
		closeClock = EndOfDayClock
	}
	cl, ok := closeClock.Minutes()
	if !ok {
		return false
	}

	return c >= o && c <= cl
}

// Minutes returns the clock as minutes since midnight.
func (t TimeString) Minutes() (int, bool) {
	return ParseClock(string(t))
}

// Validate checks the clock format.
func (t TimeString) Validate() error {
	if _, ok := t.Minutes(); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return nil
}

// IsZero reports whether the value is empty.
func (t TimeString) IsZero() bool {
	return t == ""
}

// IsEndOfDay reports whether the value is "24:00".
func (t TimeString) IsEndOfDay() bool {
	m, ok := t.Minutes()
	return ok && m == MinutesPerDay
}

// String implements fmt.Stringer.
func (t TimeString) String() string {
	return string(t)
}

// IsAfter compares two clocks; invalid values never compare as after.
func (t TimeString) IsAfter(other TimeString) bool {
	a, okA := t.Minutes()
	b, okB := other.Minutes()
	return okA && okB && a > b
}

// Scan implements sql.Scanner for TEXT and TIME columns.
func (t *TimeString) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = ""
		return nil
	case string:
		*t = TimeString(trimSeconds(v))
		return nil
	case []byte:
		*t = TimeString(trimSeconds(string(v)))
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	default:
		return fmt.Errorf("types.TimeString: cannot scan %T", value)
	}
}

// Value implements driver.Valuer.
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return string(t), nil
}

// trimSeconds drops a trailing ":SS" produced by Postgres TIME columns.
func trimSeconds(s string) string {
	if len(s) == len("15:04:05") && s[2] == ':' && s[5] == ':' {
		return s[:5]
	}
	return s
}
