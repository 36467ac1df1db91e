package services

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// sessionEntry's mu serializes read-modify-write cycles on one session.
type sessionEntry struct {
	mu       sync.Mutex
	state    State
	lastSeen time.Time
}

// SessionStore keeps one State per browser session. Sessions idle for
// longer than the TTL are dropped by Sweep.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	seed     State
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

func NewSessionStore(ttl time.Duration, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// SetSeed sets the state new sessions start from.
func (s *SessionStore) SetSeed(seed State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seed = seed
}

func (s *SessionStore) Seed() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seed
}

func (s *SessionStore) Create() string {
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &sessionEntry{state: s.seed, lastSeen: s.now()}
	s.mu.Unlock()

	return id
}

// entry looks up a live session and marks it used. Unknown, malformed and
// expired ids report false.
func (s *SessionStore) entry(id string) (*sessionEntry, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(entry, now) {
		delete(s.sessions, id)
		return nil, false
	}
	entry.lastSeen = now
	return entry, true
}

// Get returns the session's state.
func (s *SessionStore) Get(id string) (State, bool) {
	entry, ok := s.entry(id)
	if !ok {
		return State{}, false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.state, true
}

func (s *SessionStore) Exists(id string) bool {
	_, ok := s.entry(id)
	return ok
}

// Update replaces the session's state with fn's result. Updates to the
// same session run one at a time, so a slow render cannot write back a
// state that an upload has already replaced. Other sessions are not
// blocked.
func (s *SessionStore) Update(id string, fn func(State) State) (State, bool) {
	entry, ok := s.entry(id)
	if !ok {
		return State{}, false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.state = fn(entry.state)
	return entry.state, true
}

func (s *SessionStore) Put(id string, state State) {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	if !ok {
		s.sessions[id] = &sessionEntry{state: state, lastSeen: s.now()}
		s.mu.Unlock()
		return
	}
	entry.lastSeen = s.now()
	s.mu.Unlock()

	entry.mu.Lock()
	entry.state = state
	entry.mu.Unlock()
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, entry := range s.sessions {
		if s.expired(entry, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *SessionStore) expired(entry *sessionEntry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(entry.lastSeen) > s.ttl
}

// StartSweeper runs Sweep every interval until Close.
func (s *SessionStore) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					s.logger.Debug("expired sessions removed", "count", n, "remaining", s.Len())
				}
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *SessionStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Stats is used by the admin endpoint.
func (s *SessionStore) Stats() map[string]any {
	s.mu.RLock()
	entries := make([]*sessionEntry, 0, len(s.sessions))
	for _, entry := range s.sessions {
		entries = append(entries, entry)
	}
	seed := s.seed
	s.mu.RUnlock()

	withData := 0
	for _, entry := range entries {
		entry.mu.Lock()
		if entry.state.Dataset != nil {
			withData++
		}
		entry.mu.Unlock()
	}
	return map[string]any{
		"sessions":              len(entries),
		"sessions_with_dataset": withData,
		"seed_source":           seed.Source,
		"seed_rows":             seed.Dataset.Len(),
		"session_ttl":           s.ttl.String(),
	}
}
