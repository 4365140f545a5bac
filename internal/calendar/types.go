package calendar

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Weekday is a lowercase three-letter weekday code as used in the calendar
// file ("mon" .. "sun").
type Weekday string

const (
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
	Sunday    Weekday = "sun"
)

var weekdayTime = map[Weekday]time.Weekday{
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
	Sunday:    time.Sunday,
}

// Valid reports whether w is one of the seven known codes.
func (w Weekday) Valid() bool {
	_, ok := weekdayTime[w]
	return ok
}

// Time returns the time.Weekday equivalent. Only valid for known codes.
func (w Weekday) Time() time.Weekday {
	return weekdayTime[w]
}

// TimeOfDay is a wall-clock time within a day, serialized as "HH:MM:SS".
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses "HH:MM:SS" (or the shorthand "HH:MM").
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	var err error
	switch len(s) {
	case 5:
		_, err = fmt.Sscanf(s, "%02d:%02d", &t.Hour, &t.Minute)
	case 8:
		_, err = fmt.Sscanf(s, "%02d:%02d:%02d", &t.Hour, &t.Minute, &t.Second)
	default:
		return t, fmt.Errorf("invalid time of day %q (want HH:MM:SS)", s)
	}
	if err != nil {
		return t, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 || t.Second < 0 || t.Second > 59 {
		return t, fmt.Errorf("time of day %q out of range", s)
	}
	return t, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Seconds returns the offset from midnight in seconds.
func (t TimeOfDay) Seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// Before reports whether t is strictly earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Seconds() < other.Seconds()
}

// Add returns the time of day d later than t. The result is not normalized
// past midnight; callers must ensure the sum stays within the day.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	total := t.Seconds() + int(d/time.Second)
	return TimeOfDay{Hour: total / 3600, Minute: (total % 3600) / 60, Second: total % 60}
}

// At anchors the time of day to a concrete date in loc.
func (t TimeOfDay) At(d Date, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, t.Second, 0, loc)
}

// MarshalYAML serializes as the canonical "HH:MM:SS" scalar.
func (t TimeOfDay) MarshalYAML() (any, error) {
	return t.String(), nil
}

func (t *TimeOfDay) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseTimeOfDay(value.Value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Date is a calendar date, serialized as "YYYY-MM-DD".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Weekday returns the weekday of d.
func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// AddDays returns d shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time(time.UTC).AddDate(0, 0, n))
}

// After reports whether d is a later calendar date than other.
func (d Date) After(other Date) bool {
	return d.Time(time.UTC).After(other.Time(time.UTC))
}

// MarshalYAML serializes as the canonical "YYYY-MM-DD" scalar.
func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseDate(value.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeRange is a [start, end) window within a day.
type TimeRange struct {
	Start TimeOfDay `yaml:"start"`
	End   TimeOfDay `yaml:"end"`
}

// Duration returns the length of the range.
func (r TimeRange) Duration() time.Duration {
	return time.Duration(r.End.Seconds()-r.Start.Seconds()) * time.Second
}

// WeeklyRule maps a set of weekdays to available time ranges, recurring
// indefinitely.
type WeeklyRule struct {
	Days  []Weekday   `yaml:"days"`
	Slots []TimeRange `yaml:"slots"`
}

// AppliesTo reports whether the rule covers the given weekday.
func (r WeeklyRule) AppliesTo(wd time.Weekday) bool {
	for _, day := range r.Days {
		if day.Time() == wd {
			return true
		}
	}
	return false
}

// ScheduleConfig is the availability template section of the calendar file.
type ScheduleConfig struct {
	Timezone     string       `yaml:"timezone"`
	SlotDuration int          `yaml:"slot_duration"` // minutes
	Holidays     string       `yaml:"holidays"`      // ISO 3166-1 alpha-2, or empty
	Weekly       []WeeklyRule `yaml:"weekly"`
}

// SlotLength returns the slot duration as a time.Duration.
func (s ScheduleConfig) SlotLength() time.Duration {
	return time.Duration(s.SlotDuration) * time.Minute
}

// BlockedInterval is a previously committed, unavailable time range on a
// single date.
type BlockedInterval struct {
	Date   Date      `yaml:"date"`
	Start  TimeOfDay `yaml:"start"`
	End    TimeOfDay `yaml:"end"`
	Reason string    `yaml:"reason,omitempty"`
}

// Interval anchors the blocked range to concrete instants in loc.
func (b BlockedInterval) Interval(loc *time.Location) Interval {
	return Interval{Start: b.Start.At(b.Date, loc), End: b.End.At(b.Date, loc)}
}

// Document is the full calendar file: the schedule template plus the ordered
// list of blocked intervals.
type Document struct {
	Schedule ScheduleConfig    `yaml:"schedule"`
	Blocked  []BlockedInterval `yaml:"blocked"`

	loc *time.Location
}

// Location returns the schedule timezone. Only valid after Validate.
func (d *Document) Location() *time.Location {
	return d.loc
}

// Validate checks the structural invariants of the document and resolves the
// schedule timezone. It must succeed before any slot computation runs; a
// failure is a CalendarParseError.
func (d *Document) Validate() error {
	if d.Schedule.Timezone == "" {
		return newError(KindCalendarParseError, "schedule.timezone is required")
	}
	loc, err := time.LoadLocation(d.Schedule.Timezone)
	if err != nil {
		return wrapError(KindCalendarParseError, err, "invalid timezone %q", d.Schedule.Timezone)
	}
	if d.Schedule.SlotDuration <= 0 {
		return newError(KindCalendarParseError, "schedule.slot_duration must be positive, got %d", d.Schedule.SlotDuration)
	}
	for i, rule := range d.Schedule.Weekly {
		if len(rule.Days) == 0 {
			return newError(KindCalendarParseError, "weekly rule %d has no days", i)
		}
		for _, day := range rule.Days {
			if !day.Valid() {
				return newError(KindCalendarParseError, "weekly rule %d has unknown weekday %q", i, day)
			}
		}
		for j, slot := range rule.Slots {
			if !slot.Start.Before(slot.End) {
				return newError(KindCalendarParseError,
					"weekly rule %d slot %d: start %s is not before end %s", i, j, slot.Start, slot.End)
			}
			for k := 0; k < j; k++ {
				prev := rule.Slots[k]
				if slot.Start.Seconds() < prev.End.Seconds() && prev.Start.Seconds() < slot.End.Seconds() {
					return newError(KindCalendarParseError,
						"weekly rule %d: slots %d and %d overlap", i, k, j)
				}
			}
		}
	}
	for i, blocked := range d.Blocked {
		if blocked.Date.IsZero() {
			return newError(KindCalendarParseError, "blocked interval %d has no date", i)
		}
		if !blocked.Start.Before(blocked.End) {
			return newError(KindCalendarParseError,
				"blocked interval %d: start %s is not before end %s", i, blocked.Start, blocked.End)
		}
	}
	d.loc = loc
	return nil
}

// FreeSlot is a bookable sub-interval derived from the weekly template. It is
// computed on demand and never persisted.
type FreeSlot struct {
	Date     Date      `json:"date"`
	Start    TimeOfDay `json:"start"`
	End      TimeOfDay `json:"end"`
	Timezone string    `json:"timezone"`
}

// Interval anchors the slot to concrete instants in loc.
func (s FreeSlot) Interval(loc *time.Location) Interval {
	return Interval{Start: s.Start.At(s.Date, loc), End: s.End.At(s.Date, loc)}
}

func (s FreeSlot) String() string {
	return fmt.Sprintf("%s %s %s-%s (%s)",
		s.Date.Weekday().String()[:3], s.Date, s.Start, s.End, s.Timezone)
}
