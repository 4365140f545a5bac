package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/meetsched/internal/calendar"
)

// DefaultSessionTTL is how long a slot listing stays resolvable.
const DefaultSessionTTL = 15 * time.Minute

// ErrSessionExpired is returned when a list_id is unknown or expired.
var ErrSessionExpired = errors.New("slot list expired or unknown, call get_free_slots again")

// slotSession is one published slot listing.
type slotSession struct {
	slots   []calendar.FreeSlot
	created time.Time
}

// SlotSessions maps list_id tokens to the slot listings they were issued
// for. Blocking a slot by index resolves against the listing the client
// actually saw, so a calendar change between listing and blocking fails
// loudly instead of booking the wrong slot.
type SlotSessions struct {
	sessions map[string]*slotSession
	latest   string
	ttl      time.Duration
	mu       sync.Mutex
	now      func() time.Time
}

// NewSlotSessions creates a session store with the given TTL.
func NewSlotSessions(ttl time.Duration) *SlotSessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SlotSessions{
		sessions: make(map[string]*slotSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Publish stores a slot listing and returns its list_id token. Expired
// listings are pruned on the way.
func (s *SlotSessions) Publish(slots []calendar.FreeSlot) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	id := uuid.NewString()
	s.sessions[id] = &slotSession{
		slots:   slots,
		created: s.now(),
	}
	s.latest = id
	return id
}

// Resolve returns the slot at index within the listing identified by
// listID. An empty listID resolves against the most recent listing. The
// listing stays valid until its TTL runs out, so a client can block
// several slots from one listing.
func (s *SlotSessions) Resolve(listID string, index int) (calendar.FreeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if listID == "" {
		listID = s.latest
	}
	sess, ok := s.sessions[listID]
	if !ok || s.now().Sub(sess.created) > s.ttl {
		delete(s.sessions, listID)
		return calendar.FreeSlot{}, ErrSessionExpired
	}
	if index < 0 || index >= len(sess.slots) {
		return calendar.FreeSlot{}, calendar.NewError(calendar.KindIndexOutOfRange,
			"slot index %d out of range, listing has %d slots", index, len(sess.slots))
	}
	return sess.slots[index], nil
}

// Len returns the number of live sessions.
func (s *SlotSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	return len(s.sessions)
}

func (s *SlotSessions) pruneLocked() {
	now := s.now()
	for id, sess := range s.sessions {
		if now.Sub(sess.created) > s.ttl {
			delete(s.sessions, id)
		}
	}
}
