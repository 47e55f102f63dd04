// Package conversation keeps bounded per-session question/answer history
// in memory so follow-up questions can be resolved against prior turns.
package conversation

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultMaxTurns is the number of most recent turns retained per session.
const DefaultMaxTurns = 10

// Turn is one completed question/answer exchange.
type Turn struct {
	Question string
	Answer   string
	AskedAt  time.Time
}

type session struct {
	turns      []Turn
	createdAt  time.Time
	lastUsedAt time.Time
}

// Store holds conversation history for all active sessions.
type Store struct {
	maxTurns int
	logger   *logrus.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewStore creates a store that retains at most maxTurns turns per session.
// Non-positive maxTurns falls back to DefaultMaxTurns.
func NewStore(maxTurns int, logger *logrus.Logger) *Store {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{
		maxTurns: maxTurns,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// Append records a completed exchange for the session, creating the session
// on first use. The oldest turn is evicted once the retention bound is hit.
func (s *Store) Append(sessionID, question, answer string) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{createdAt: now}
		s.sessions[sessionID] = sess
	}

	sess.turns = append(sess.turns, Turn{
		Question: question,
		Answer:   answer,
		AskedAt:  now,
	})
	if len(sess.turns) > s.maxTurns {
		sess.turns = sess.turns[len(sess.turns)-s.maxTurns:]
	}
	sess.lastUsedAt = now

	s.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"turns":      len(sess.turns),
	}).Debug("Recorded conversation turn")
}

// History returns the session's turns oldest first. The returned slice is a
// copy and is safe to hold across later appends. Unknown sessions yield nil.
func (s *Store) History(sessionID string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok || len(sess.turns) == 0 {
		return nil
	}

	turns := make([]Turn, len(sess.turns))
	copy(turns, sess.turns)
	return turns
}

// Clear removes the session and all of its history. It reports whether the
// session existed.
func (s *Store) Clear(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return false
	}
	delete(s.sessions, sessionID)

	s.logger.WithField("session_id", sessionID).Debug("Cleared conversation session")
	return true
}

// Sessions returns the number of sessions currently held.
func (s *Store) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
