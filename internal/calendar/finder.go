package calendar

import (
	"time"

	"github.com/teemow/meetsched/internal/holidays"
)

const (
	// DefaultHorizonDays bounds the search window when the caller gives no
	// end date.
	DefaultHorizonDays = 30

	// DefaultMaxResults caps the number of slots offered per query.
	DefaultMaxResults = 50
)

// FindOptions narrows a free-slot query. Zero values pick the defaults: the
// range starts today, spans DefaultHorizonDays, and Now is the wall clock.
type FindOptions struct {
	From Date
	To   Date

	// Now is the reference instant for the "no slots in the past" rule.
	// Zero means time.Now in the schedule timezone.
	Now time.Time

	// MinNotice shifts the earliest bookable instant past Now. Zero means
	// slots are offered up to the current instant.
	MinNotice time.Duration

	// MaxResults caps the result length; zero or negative means unlimited.
	MaxResults int
}

// SlotFinder derives concrete free slots from a validated document. It is a
// pure view over one in-memory document; create a fresh finder after every
// load so the computation reflects the latest on-disk state.
type SlotFinder struct {
	doc      *Document
	loc      *time.Location
	holidays *holidays.Checker
}

// NewSlotFinder builds a finder over doc. The document must have passed
// Validate.
func NewSlotFinder(doc *Document, checker *holidays.Checker) *SlotFinder {
	if checker == nil {
		checker = holidays.New(doc.Schedule.Holidays)
	}
	return &SlotFinder{doc: doc, loc: doc.Location(), holidays: checker}
}

// FindFreeSlots expands the weekly template over the requested date range
// (inclusive on both ends), subtracts holidays and blocked intervals, drops
// non-future slots, and returns the survivors in ascending chronological
// order. An inverted range yields an empty result, not an error.
func (f *SlotFinder) FindFreeSlots(opts FindOptions) []FreeSlot {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.In(f.loc)
	minBookable := now.Add(opts.MinNotice)

	from := opts.From
	if from.IsZero() {
		from = DateOf(now)
	}
	to := opts.To
	if to.IsZero() {
		to = from.AddDays(DefaultHorizonDays)
	}

	var slots []FreeSlot
	for d := from; !d.After(to); d = d.AddDays(1) {
		slots = append(slots, f.slotsForDate(d, minBookable)...)
		if opts.MaxResults > 0 && len(slots) >= opts.MaxResults {
			return slots[:opts.MaxResults]
		}
	}
	return slots
}

// slotsForDate partitions the matching weekly ranges of one date into
// slot-duration sub-intervals, discarding the trailing partial interval,
// blocked overlaps, holidays, and anything not strictly in the future.
func (f *SlotFinder) slotsForDate(d Date, minBookable time.Time) []FreeSlot {
	if f.holidays.IsHoliday(d.Time(f.loc)) {
		return nil
	}

	weekday := d.Weekday()
	var ranges []TimeRange
	for _, rule := range f.doc.Schedule.Weekly {
		if rule.AppliesTo(weekday) {
			ranges = append(ranges, rule.Slots...)
		}
	}
	if len(ranges) == 0 {
		return nil
	}

	slotLen := f.doc.Schedule.SlotLength()
	var out []FreeSlot
	for _, r := range ranges {
		windowEnd := r.End.At(d, f.loc)
		for cur := r.Start.At(d, f.loc); !cur.Add(slotLen).After(windowEnd); cur = cur.Add(slotLen) {
			slot := Interval{Start: cur, End: cur.Add(slotLen)}
			if !slot.Start.After(minBookable) {
				continue
			}
			if f.isBlocked(slot) {
				continue
			}
			out = append(out, FreeSlot{
				Date:     d,
				Start:    TimeOfDay{Hour: slot.Start.Hour(), Minute: slot.Start.Minute(), Second: slot.Start.Second()},
				End:      TimeOfDay{Hour: slot.End.Hour(), Minute: slot.End.Minute(), Second: slot.End.Second()},
				Timezone: f.doc.Schedule.Timezone,
			})
		}
	}
	return out
}

func (f *SlotFinder) isBlocked(slot Interval) bool {
	return f.blockedReason(slot) != nil
}

// blockedReason returns the first blocked interval overlapping slot, or nil.
func (f *SlotFinder) blockedReason(slot Interval) *BlockedInterval {
	for i := range f.doc.Blocked {
		if f.doc.Blocked[i].Interval(f.loc).Overlaps(slot) {
			return &f.doc.Blocked[i]
		}
	}
	return nil
}

// IsBookable checks whether the concrete interval on date d is free to
// block: in the future, not a holiday, inside a weekly availability window,
// and not overlapping any blocked interval. The returned reason is empty
// when the slot is bookable.
func (f *SlotFinder) IsBookable(d Date, start, end TimeOfDay, now time.Time) (bool, string) {
	now = now.In(f.loc)
	target, err := NewInterval(start.At(d, f.loc), end.At(d, f.loc))
	if err != nil {
		return false, err.Error()
	}

	if !target.Start.After(now) {
		return false, "slot is in the past"
	}
	if name := f.holidays.HolidayName(d.Time(f.loc)); name != "" {
		return false, name
	}

	weekday := d.Weekday()
	inWindow := false
	for _, rule := range f.doc.Schedule.Weekly {
		if !rule.AppliesTo(weekday) {
			continue
		}
		for _, r := range rule.Slots {
			window := Interval{Start: r.Start.At(d, f.loc), End: r.End.At(d, f.loc)}
			if window.Contains(target) {
				inWindow = true
				break
			}
		}
	}
	if !inWindow {
		return false, "outside of availability"
	}

	if blocked := f.blockedReason(target); blocked != nil {
		if blocked.Reason != "" {
			return false, blocked.Reason
		}
		return false, "blocked"
	}
	return true, ""
}
