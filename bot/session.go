package bot

import (
	"errors"
	"sync"
	"time"

	"mymenu-bot/metrics"
	"mymenu-bot/models"
	"mymenu-bot/services"
)

var (
	errNoDraft     = errors.New("no food open")
	errUnknownItem = errors.New("item does not belong to the open food")
)

// Session is one chat's state: the company being browsed, the single draft
// slot and the cart. Only touch it while holding the lock from Sessions.Acquire.
type Session struct {
	ChatID    int64
	CompanyID string
	Lang      string
	Cart      *services.Cart

	Food                *models.Food
	Draft               *models.OrderItem
	Observation         string
	AwaitingObservation bool
	CardMessageID       int // food card being edited in place

	lastSeen time.Time
}

// OpenFood replaces whatever draft was open with a fresh one for food.
func (s *Session) OpenFood(food models.Food) {
	d := services.InitDraft(food)
	s.Food = &food
	s.Draft = &d
	s.Observation = ""
	s.AwaitingObservation = false
	s.CardMessageID = 0
}

// CloseDraft discards the open draft without touching the cart.
func (s *Session) CloseDraft() {
	s.Food = nil
	s.Draft = nil
	s.Observation = ""
	s.AwaitingObservation = false
	s.CardMessageID = 0
}

// AddSubItem adds one unit of itemID unless its category is full. It returns the
// category so callers can tell the user about the cap; added is false when capped.
func (s *Session) AddSubItem(itemID string) (cat models.FoodItemCategory, added bool, err error) {
	if s.Draft == nil || s.Food == nil {
		return cat, false, errNoDraft
	}
	cat, ok := s.Food.CategoryOf(itemID)
	if !ok {
		return cat, false, errUnknownItem
	}
	if !services.CanAddSubItem(cat, *s.Draft) {
		metrics.SubItemsCapped.Inc()
		return cat, false, nil
	}
	item, _ := s.Food.Item(itemID)
	d := services.AddSubItem(*s.Draft, item)
	s.Draft = &d
	return cat, true, nil
}

func (s *Session) RemoveSubItem(itemID string) error {
	if s.Draft == nil {
		return errNoDraft
	}
	d := services.RemoveSubItem(*s.Draft, itemID)
	s.Draft = &d
	return nil
}

// Confirm validates the draft and, when every minimum is met, commits it into
// the cart and closes the draft. Violations leave the draft open.
func (s *Session) Confirm() (violations []string, line models.OrderItem, err error) {
	if s.Draft == nil || s.Food == nil {
		return nil, line, errNoDraft
	}
	if violations = services.Validate(*s.Food, *s.Draft); len(violations) > 0 {
		metrics.ValidationFailures.Inc()
		return violations, line, nil
	}
	line = services.Commit(*s.Draft, s.Observation)
	s.Cart.AddItem(line)
	metrics.CartLinesAdded.Inc()
	s.CloseDraft()
	return nil, line, nil
}

// SwitchCompany points the session at another menu. The cart belongs to one
// company, so it is emptied when the company changes.
func (s *Session) SwitchCompany(companyID string) {
	if s.CompanyID != companyID {
		s.Cart.Clear()
	}
	s.CompanyID = companyID
	s.CloseDraft()
}

type sessionEntry struct {
	mu      sync.Mutex
	session *Session
}

// Sessions keeps one Session per chat and serializes work on each of them.
type Sessions struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[int64]*sessionEntry
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[int64]*sessionEntry),
	}
}

// Acquire locks the chat's session, creating it when needed, and returns it
// with an unlock function. created reports a brand-new session.
func (s *Sessions) Acquire(chatID int64) (sess *Session, created bool, unlock func()) {
	s.mu.Lock()
	e, ok := s.entries[chatID]
	if ok && s.expired(e) {
		ok = false
	}
	if !ok {
		e = &sessionEntry{session: &Session{ChatID: chatID, Cart: services.NewCart()}}
		s.entries[chatID] = e
		metrics.ActiveSessions.Set(float64(len(s.entries)))
	}
	s.mu.Unlock()

	e.mu.Lock()
	e.session.lastSeen = s.now()
	return e.session, !ok, e.mu.Unlock
}

// Sweep forgets sessions idle for longer than the TTL and returns their chat ids.
func (s *Sessions) Sweep() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var gone []int64
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
			gone = append(gone, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.entries)))
	return gone
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// expired never reports an entry that is currently locked.
func (s *Sessions) expired(e *sessionEntry) bool {
	if s.ttl <= 0 || !e.mu.TryLock() {
		return false
	}
	defer e.mu.Unlock()
	return s.now().Sub(e.session.lastSeen) > s.ttl
}
