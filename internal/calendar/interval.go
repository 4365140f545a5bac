package calendar

import "time"

// Interval is a half-open [Start, End) range of instants. Both endpoints
// carry their timezone; comparisons use absolute time, so operands from
// different zones compare correctly.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval validates and builds an interval. Zero (timezone-less) values
// and an end at or before the start are rejected with an InvalidInterval
// error.
func NewInterval(start, end time.Time) (Interval, error) {
	if start.IsZero() || end.IsZero() {
		return Interval{}, newError(KindInvalidInterval, "interval endpoints must carry a timezone-aware instant")
	}
	if !end.After(start) {
		return Interval{}, newError(KindInvalidInterval, "interval end %s is not after start %s",
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether the two half-open intervals intersect. Touching
// endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether other lies entirely within i.
func (i Interval) Contains(other Interval) bool {
	return !i.Start.After(other.Start) && !other.End.After(i.End)
}

// In returns the interval with both endpoints normalized to loc. The
// represented instants are unchanged.
func (i Interval) In(loc *time.Location) Interval {
	return Interval{Start: i.Start.In(loc), End: i.End.In(loc)}
}
