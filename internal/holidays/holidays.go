// Package holidays answers whether a calendar date is a public holiday for a
// configured country. The lookup is a pure function of (country code, date).
package holidays

import (
	"sync"
	"time"
)

// rule describes a single holiday: either a fixed month/day or an offset in
// days relative to Easter Sunday.
type rule struct {
	name         string
	month        time.Month
	day          int
	easterOffset int
	fromEaster   bool
}

func fixed(name string, month time.Month, day int) rule {
	return rule{name: name, month: month, day: day}
}

func easterRelative(name string, offset int) rule {
	return rule{name: name, easterOffset: offset, fromEaster: true}
}

// German public holidays, including the widely observed half-day closures on
// Dec 24 and Dec 31.
var germanRules = []rule{
	fixed("New Year's Day", time.January, 1),
	easterRelative("Good Friday", -2),
	easterRelative("Easter Monday", 1),
	easterRelative("Ascension Day", 39),
	easterRelative("Whit Monday", 50),
	fixed("Labor Day", time.May, 1),
	fixed("German Unity Day", time.October, 3),
	fixed("Reformation Day", time.October, 31),
	fixed("Christmas Eve", time.December, 24),
	fixed("Christmas Day", time.December, 25),
	fixed("Boxing Day", time.December, 26),
	fixed("New Year's Eve", time.December, 31),
}

var countryRules = map[string][]rule{
	"DE": germanRules,
}

// Checker resolves holidays for one country. A zero-value or unknown country
// code yields a checker that never reports holidays.
type Checker struct {
	country string
	rules   []rule

	// byYear caches resolved dates per year; the rule set is tiny so this
	// is just to avoid recomputing Easter on every call.
	mu     sync.Mutex
	byYear map[int]map[monthDay]string
}

type monthDay struct {
	month time.Month
	day   int
}

// New returns a checker for the given ISO 3166-1 alpha-2 country code.
func New(country string) *Checker {
	return &Checker{
		country: country,
		rules:   countryRules[country],
		byYear:  make(map[int]map[monthDay]string),
	}
}

// Country returns the configured country code.
func (c *Checker) Country() string {
	return c.country
}

// IsHoliday reports whether the date of t (in t's location) is a holiday.
func (c *Checker) IsHoliday(t time.Time) bool {
	return c.HolidayName(t) != ""
}

// HolidayName returns the holiday name for the date of t, or "" if the date
// is not a holiday.
func (c *Checker) HolidayName(t time.Time) string {
	if len(c.rules) == 0 {
		return ""
	}
	year, month, day := t.Date()
	c.mu.Lock()
	defer c.mu.Unlock()
	days, ok := c.byYear[year]
	if !ok {
		days = c.resolveYear(year)
		c.byYear[year] = days
	}
	return days[monthDay{month, day}]
}

func (c *Checker) resolveYear(year int) map[monthDay]string {
	days := make(map[monthDay]string, len(c.rules))
	easterSunday := easter(year)
	for _, r := range c.rules {
		if r.fromEaster {
			d := easterSunday.AddDate(0, 0, r.easterOffset)
			days[monthDay{d.Month(), d.Day()}] = r.name
		} else {
			days[monthDay{r.month, r.day}] = r.name
		}
	}
	return days
}

// easter returns Easter Sunday of the given year in the Gregorian calendar,
// using the anonymous Gregorian computus.
func easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
