package calendar

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input    string
		expected TimeOfDay
		wantErr  bool
	}{
		{"09:00:00", TimeOfDay{Hour: 9}, false},
		{"13:30:00", TimeOfDay{Hour: 13, Minute: 30}, false},
		{"23:59:59", TimeOfDay{Hour: 23, Minute: 59, Second: 59}, false},
		{"09:00", TimeOfDay{Hour: 9}, false},
		{"9:00", TimeOfDay{}, true},
		{"24:00:00", TimeOfDay{}, true},
		{"12:60:00", TimeOfDay{}, true},
		{"not-a-time", TimeOfDay{}, true},
		{"", TimeOfDay{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseTimeOfDay(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimeOfDay(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTimeOfDay_String(t *testing.T) {
	tod := TimeOfDay{Hour: 9, Minute: 5}
	if got := tod.String(); got != "09:05:00" {
		t.Errorf("String() = %q, want %q", got, "09:05:00")
	}
}

func TestTimeOfDay_Add(t *testing.T) {
	tod := TimeOfDay{Hour: 9, Minute: 30}
	got := tod.Add(45 * time.Minute)
	want := TimeOfDay{Hour: 10, Minute: 15}
	if got != want {
		t.Errorf("Add(45m) = %v, want %v", got, want)
	}
}

func TestTimeOfDay_Before(t *testing.T) {
	a := TimeOfDay{Hour: 9}
	b := TimeOfDay{Hour: 9, Minute: 30}

	if !a.Before(b) {
		t.Error("09:00 should be before 09:30")
	}
	if b.Before(a) {
		t.Error("09:30 should not be before 09:00")
	}
	if a.Before(a) {
		t.Error("a time is not before itself")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected Date
		wantErr  bool
	}{
		{"2026-09-01", Date{Year: 2026, Month: time.September, Day: 1}, false},
		{"2026-02-29", Date{}, true},
		{"01.09.2026", Date{}, true},
		{"", Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseDate(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDate_Weekday(t *testing.T) {
	d := Date{Year: 2026, Month: time.September, Day: 1}
	if got := d.Weekday(); got != time.Tuesday {
		t.Errorf("Weekday() = %v, want Tuesday", got)
	}
}

func TestDate_AddDays(t *testing.T) {
	d := Date{Year: 2026, Month: time.August, Day: 31}
	got := d.AddDays(1)
	want := Date{Year: 2026, Month: time.September, Day: 1}
	if got != want {
		t.Errorf("AddDays(1) = %v, want %v", got, want)
	}
}

func TestDocument_Validate(t *testing.T) {
	valid := func() *Document {
		return &Document{
			Schedule: ScheduleConfig{
				Timezone:     "Europe/Berlin",
				SlotDuration: 30,
				Weekly: []WeeklyRule{
					{
						Days:  []Weekday{Monday, Tuesday},
						Slots: []TimeRange{{Start: TimeOfDay{Hour: 9}, End: TimeOfDay{Hour: 12}}},
					},
				},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Document)
		ok     bool
	}{
		{
			name:   "valid document",
			mutate: func(d *Document) {},
			ok:     true,
		},
		{
			name:   "missing timezone",
			mutate: func(d *Document) { d.Schedule.Timezone = "" },
		},
		{
			name:   "unknown timezone",
			mutate: func(d *Document) { d.Schedule.Timezone = "Mars/Olympus" },
		},
		{
			name:   "zero slot duration",
			mutate: func(d *Document) { d.Schedule.SlotDuration = 0 },
		},
		{
			name:   "rule without days",
			mutate: func(d *Document) { d.Schedule.Weekly[0].Days = nil },
		},
		{
			name:   "unknown weekday",
			mutate: func(d *Document) { d.Schedule.Weekly[0].Days = []Weekday{"funday"} },
		},
		{
			name: "inverted slot range",
			mutate: func(d *Document) {
				d.Schedule.Weekly[0].Slots[0] = TimeRange{Start: TimeOfDay{Hour: 12}, End: TimeOfDay{Hour: 9}}
			},
		},
		{
			name: "overlapping slots in one rule",
			mutate: func(d *Document) {
				d.Schedule.Weekly[0].Slots = append(d.Schedule.Weekly[0].Slots,
					TimeRange{Start: TimeOfDay{Hour: 11}, End: TimeOfDay{Hour: 13}})
			},
		},
		{
			name: "blocked interval without date",
			mutate: func(d *Document) {
				d.Blocked = []BlockedInterval{{Start: TimeOfDay{Hour: 9}, End: TimeOfDay{Hour: 10}}}
			},
		},
		{
			name: "blocked interval inverted",
			mutate: func(d *Document) {
				d.Blocked = []BlockedInterval{{
					Date:  Date{Year: 2026, Month: time.September, Day: 1},
					Start: TimeOfDay{Hour: 10},
					End:   TimeOfDay{Hour: 9},
				}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := valid()
			tt.mutate(doc)
			err := doc.Validate()
			if tt.ok {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				if doc.Location() == nil {
					t.Error("Location() should be resolved after Validate")
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !IsKind(err, KindCalendarParseError) {
				t.Errorf("expected calendar_parse_error kind, got %v", KindOf(err))
			}
		})
	}
}
