package services

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"salesdash/internal/config"
	"salesdash/pkg/contracts/domain"
)

// Session is one browser's dashboard state. Table is nil until an upload
// succeeds.
type Session struct {
	ID        string
	Table     *domain.TransactionTable
	CreatedAt time.Time
	LastSeen  time.Time
}

// SessionStore keeps a table per session ID. Entries idle for longer than
// the TTL are dropped lazily on access and pruned on insert.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	max      int
	now      func() time.Time
	logger   *slog.Logger
}

// NewSessionStore creates a store from the session config section.
func NewSessionStore(cfg config.SessionConfig, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      cfg.TTL,
		max:      cfg.MaxSessions,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "session_store")),
	}
}

// NewSessionID returns a fresh opaque session identifier.
func NewSessionID() string {
	return uuid.New().String()
}

// Get returns the live session for id and refreshes its idle timer.
func (s *SessionStore) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(sess, now) {
		delete(s.sessions, id)
		s.logger.Debug("session expired", slog.String("session_id", id))
		return nil, false
	}
	sess.LastSeen = now
	return sess, true
}

// Table returns the loaded table of a session or ErrNoFile.
func (s *SessionStore) Table(id string) (*domain.TransactionTable, error) {
	sess, ok := s.Get(id)
	if !ok || sess.Table == nil {
		return nil, ErrNoFile
	}
	return sess.Table, nil
}

// Put stores table under id, replacing any previous table. When id is not
// a live session a new session with a freshly minted ID is created, so a
// client can never choose its own ID. It returns the session ID in effect.
func (s *SessionStore) Put(id string, table *domain.TransactionTable) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sess, ok := s.sessions[id]; ok && !s.expired(sess, now) {
		sess.Table = table
		sess.LastSeen = now
		return id
	}

	s.pruneLocked(now)
	if s.max > 0 && len(s.sessions) >= s.max {
		s.evictOldestLocked()
	}

	id = NewSessionID()
	s.sessions[id] = &Session{ID: id, Table: table, CreatedAt: now, LastSeen: now}
	return id
}

// Delete drops a session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of stored sessions, expired or not.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops every expired session and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.sessions)
	s.pruneLocked(s.now())
	return before - len(s.sessions)
}

// TTL returns the idle timeout of the store.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

func (s *SessionStore) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.LastSeen) > s.ttl
}

func (s *SessionStore) pruneLocked(now time.Time) {
	pruned := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			pruned++
		}
	}
	if pruned > 0 {
		s.logger.Debug("pruned expired sessions", slog.Int("count", pruned))
	}
}

func (s *SessionStore) evictOldestLocked() {
	var oldest *Session
	for _, sess := range s.sessions {
		if oldest == nil || sess.LastSeen.Before(oldest.LastSeen) {
			oldest = sess
		}
	}
	if oldest != nil {
		delete(s.sessions, oldest.ID)
		s.logger.Info("session limit reached, evicted oldest",
			slog.String("session_id", oldest.ID),
			slog.Int("max_sessions", s.max))
	}
}
