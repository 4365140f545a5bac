package calendar

import (
	"log/slog"
	"time"

	"github.com/teemow/meetsched/internal/holidays"
	"github.com/teemow/meetsched/internal/logging"
)

// ManagerConfig configures a Manager. Path is required; the rest falls back
// to defaults matching the finder.
type ManagerConfig struct {
	// Path is the calendar file location.
	Path string

	// MinNotice is the minimum lead time before a slot may be offered or
	// blocked.
	MinNotice time.Duration

	// MaxResults caps the slots returned per query; zero means
	// DefaultMaxResults.
	MaxResults int

	// HorizonDays bounds the default search window; zero means
	// DefaultHorizonDays.
	HorizonDays int
}

// Manager ties the store, finder, and holiday checker together behind the
// load-mutate-save cycle. Every operation loads the document fresh so it
// observes the latest on-disk state; mutations write back atomically.
type Manager struct {
	store       *Store
	minNotice   time.Duration
	maxResults  int
	horizonDays int
	logger      *slog.Logger

	// now is the clock; overridable in tests.
	now func() time.Time
}

// NewManager creates a manager for the calendar at cfg.Path.
func NewManager(cfg ManagerConfig) *Manager {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	horizon := cfg.HorizonDays
	if horizon <= 0 {
		horizon = DefaultHorizonDays
	}
	return &Manager{
		store:       NewStore(cfg.Path),
		minNotice:   cfg.MinNotice,
		maxResults:  maxResults,
		horizonDays: horizon,
		logger:      logging.WithService(slog.Default(), "calendar"),
		now:         time.Now,
	}
}

// SetClock overrides the manager's clock. Intended for tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Store exposes the underlying store.
func (m *Manager) Store() *Store {
	return m.store
}

// DefaultDocument is the calendar written on first run: Berlin office hours,
// 30-minute slots, German holidays.
func DefaultDocument() *Document {
	return &Document{
		Schedule: ScheduleConfig{
			Timezone:     "Europe/Berlin",
			SlotDuration: 30,
			Holidays:     "DE",
			Weekly: []WeeklyRule{
				{
					Days: []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday},
					Slots: []TimeRange{
						{Start: TimeOfDay{Hour: 9}, End: TimeOfDay{Hour: 12}},
						{Start: TimeOfDay{Hour: 13}, End: TimeOfDay{Hour: 17}},
					},
				},
			},
		},
		Blocked: []BlockedInterval{},
	}
}

// EnsureExists writes the default calendar if the backing file is absent.
func (m *Manager) EnsureExists() error {
	if m.store.Exists() {
		return nil
	}
	m.logger.Info("creating default calendar", "path", m.store.Path())
	return m.store.Save(DefaultDocument())
}

// Load reads the current document.
func (m *Manager) Load() (*Document, error) {
	return m.store.Load()
}

func (m *Manager) finder(doc *Document) *SlotFinder {
	return NewSlotFinder(doc, holidays.New(doc.Schedule.Holidays))
}

// FreeSlots loads the calendar and computes the free slots for the given
// range. Zero dates select the default window (today plus the configured
// horizon).
func (m *Manager) FreeSlots(from, to Date) ([]FreeSlot, error) {
	doc, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	now := m.now()
	if to.IsZero() && !from.IsZero() {
		to = from.AddDays(m.horizonDays)
	}
	slots := m.finder(doc).FindFreeSlots(FindOptions{
		From:       from,
		To:         to,
		Now:        now,
		MinNotice:  m.minNotice,
		MaxResults: m.maxResults,
	})
	m.logger.Debug("computed free slots",
		logging.Operation("free_slots"),
		"count", len(slots),
	)
	return slots, nil
}

// BlockSlot appends a blocked interval for the target range after checking
// it is actually free. Overlap with an existing blocked interval fails with
// SlotAlreadyBlocked; a holiday, past instant, or range outside any weekly
// window fails with SlotNotAvailable. On success the document is saved
// atomically and returned; on any failure the file is left untouched.
func (m *Manager) BlockSlot(date Date, start, end TimeOfDay, reason string) (*Document, error) {
	doc, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	loc := doc.Location()
	target, err := NewInterval(start.At(date, loc), end.At(date, loc))
	if err != nil {
		return nil, err
	}

	finder := m.finder(doc)
	if blocked := finder.blockedReason(target); blocked != nil {
		return nil, newError(KindSlotAlreadyBlocked,
			"%s %s-%s overlaps blocked interval %s %s-%s",
			date, start, end, blocked.Date, blocked.Start, blocked.End)
	}
	if ok, why := finder.IsBookable(date, start, end, m.now()); !ok {
		return nil, newError(KindSlotNotAvailable, "%s %s-%s is not available: %s", date, start, end, why)
	}

	doc.Blocked = append(doc.Blocked, BlockedInterval{
		Date:   date,
		Start:  start,
		End:    end,
		Reason: reason,
	})
	if err := m.store.Save(doc); err != nil {
		return nil, err
	}

	m.logger.Info("blocked slot",
		logging.Operation("block_slot"),
		"date", date.String(),
		"start", start.String(),
		"end", end.String(),
	)
	return doc, nil
}
