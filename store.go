package main

import (
	"crypto/rand"
	"encoding/hex"
	"slices"
	"sync"

	"github.com/jonboulle/clockwork"
)

// Store holds timer sessions and generated demo blurbs in memory.
type Store struct {
	clock  clockwork.Clock
	mu     sync.RWMutex
	timers map[string]*TimerSession
	blurbs map[string]string
}

// NewStore creates an empty store whose timers run on clock.
func NewStore(clock clockwork.Clock) *Store {
	return &Store{
		clock:  clock,
		timers: make(map[string]*TimerSession),
		blurbs: make(map[string]string),
	}
}

// CreateTimer starts tracking a new paused timer of the given kind.
func (s *Store) CreateTimer(kind TimerKind) (*TimerSession, error) {
	ts, err := newTimerSession(generateID(), kind, s.clock)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.timers[ts.ID] = ts
	s.mu.Unlock()

	return ts, nil
}

// GetTimer returns a session by ID, or nil if not found.
func (s *Store) GetTimer(id string) *TimerSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timers[id]
}

// ListTimers returns all sessions, most recent first.
func (s *Store) ListTimers() []*TimerSession {
	s.mu.RLock()
	list := make([]*TimerSession, 0, len(s.timers))
	for _, ts := range s.timers {
		list = append(list, ts)
	}
	s.mu.RUnlock()

	slices.SortFunc(list, func(a, b *TimerSession) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return list
}

// ExpireTimers returns the pomodoro sessions whose countdown ran out since
// the previous call.
func (s *Store) ExpireTimers() []*TimerSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var expired []*TimerSession
	for _, ts := range s.timers {
		if ts.expire() {
			expired = append(expired, ts)
		}
	}
	return expired
}

// Blurb returns the cached info text of a demo.
func (s *Store) Blurb(slug string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.blurbs[slug]
	return text, ok
}

// SaveBlurb caches the info text of a demo.
func (s *Store) SaveBlurb(slug, text string) {
	s.mu.Lock()
	s.blurbs[slug] = text
	s.mu.Unlock()
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
