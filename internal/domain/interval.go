package domain

import "time"

// Interval is a half-open range of absolute instants [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// IsValid returns true if End is strictly after Start
func (i Interval) IsValid() bool {
	return i.End.After(i.Start)
}

// Duration returns End - Start
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps uses strict inequalities: touching intervals do not overlap
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}
