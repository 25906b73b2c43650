package shop

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TheWindows/bazaar/internal/store"
)

// DefaultSessionTTL is how long a quote stays confirmable.
const DefaultSessionTTL = 2 * time.Minute

// Session is one pending quote, scoped to (player, item, direction).
// Scoping to the interaction rather than a process-wide per-player map
// means two quotes from the same player name can never clobber each
// other.
type Session struct {
	ID        string       `json:"session_id"`
	Player    string       `json:"player"`
	ItemID    string       `json:"item_id"`
	Kind      store.TxKind `json:"type"`
	Quantity  int64        `json:"quantity"`
	UnitPrice float64      `json:"unit_price"`
	Total     float64      `json:"total"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Sessions holds pending quotes until they are confirmed or expire.
type Sessions struct {
	mu   sync.Mutex
	ttl  time.Duration
	byID map[string]*Session
	now  func() time.Time
}

// NewSessions creates a session table. Non-positive ttl gets
// DefaultSessionTTL.
func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{
		ttl:  ttl,
		byID: make(map[string]*Session),
		now:  time.Now,
	}
}

// Create stores a new quote and returns it with a fresh id.
func (s *Sessions) Create(player, itemID string, kind store.TxKind, quantity int64, unitPrice, total float64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeLocked()

	sess := &Session{
		ID:        uuid.NewString(),
		Player:    player,
		ItemID:    itemID,
		Kind:      kind,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Total:     total,
		ExpiresAt: s.now().Add(s.ttl),
	}
	s.byID[sess.ID] = sess
	return sess
}

// Take removes and returns the session with the given id. Returns
// false when the id is unknown or the quote has expired; either way the
// session cannot be confirmed twice.
func (s *Sessions) Take(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	delete(s.byID, id)

	if s.now().After(sess.ExpiresAt) {
		return nil, false
	}
	return sess, true
}

func (s *Sessions) purgeLocked() {
	now := s.now()
	for id, sess := range s.byID {
		if now.After(sess.ExpiresAt) {
			delete(s.byID, id)
		}
	}
}
