package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Role identifies who produced a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultMaxHistory is the number of turns kept per session. It is even so
// FIFO trimming drops whole user/assistant exchanges.
const DefaultMaxHistory = 20

// Turn is one role-tagged message in a session's history
type Turn struct {
	Role    Role
	Content string
}

// ImageContext holds the most recent image a user sent, so plain-text
// follow-up questions can keep referring to it.
type ImageContext struct {
	Data       []byte
	MIMEType   string
	Descriptor string
	CapturedAt time.Time
}

// Session is the per-user conversational memory
type Session struct {
	History []Turn
	Image   *ImageContext
}

// Store owns all sessions, keyed by the transport's user ID. All mutation
// goes through the store; callers never hold a Session past one message.
type Store struct {
	sessions   map[int64]*Session
	maxHistory int
	logger     zerolog.Logger
	mu         sync.Mutex
}

// NewStore creates a new session store
func NewStore(maxHistory int, logger zerolog.Logger) *Store {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}

	return &Store{
		sessions:   make(map[int64]*Session),
		maxHistory: maxHistory,
		logger:     logger.With().Str("component", "session").Logger(),
	}
}

// GetOrCreate returns the session for a user, creating an empty one on first
// contact. It never fails.
func (s *Store) GetOrCreate(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getOrCreateLocked(userID)
}

func (s *Store) getOrCreateLocked(userID int64) *Session {
	sess, exists := s.sessions[userID]
	if !exists {
		sess = &Session{}
		s.sessions[userID] = sess
		s.logger.Debug().Int64("user_id", userID).Msg("Session created")
	}
	return sess
}

// AppendTurn appends a turn to a user's history and trims to the configured
// maximum, oldest turns first.
func (s *Store) AppendTurn(userID int64, role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(userID)
	sess.History = append(sess.History, Turn{Role: role, Content: content})
	s.trimLocked(sess)
}

// AppendExchange records a full user/assistant exchange as two turns. Using
// this instead of two AppendTurn calls keeps exchanges aligned so trimming
// never splits a pair.
func (s *Store) AppendExchange(userID int64, userText, assistantText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(userID)
	sess.History = append(sess.History,
		Turn{Role: RoleUser, Content: userText},
		Turn{Role: RoleAssistant, Content: assistantText},
	)
	s.trimLocked(sess)
}

// trimLocked drops the oldest turns until the history fits. The most recent
// maxHistory turns survive in their original order.
func (s *Store) trimLocked(sess *Session) {
	if len(sess.History) <= s.maxHistory {
		return
	}

	excess := len(sess.History) - s.maxHistory
	trimmed := make([]Turn, s.maxHistory)
	copy(trimmed, sess.History[excess:])
	sess.History = trimmed
}

// History returns a copy of a user's history. The copy keeps callers from
// mutating stored turns outside the lock.
func (s *Store) History(userID int64) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(userID)
	history := make([]Turn, len(sess.History))
	copy(history, sess.History)
	return history
}

// SetImageContext replaces any existing image context for a user
func (s *Store) SetImageContext(userID int64, data []byte, mimeType, descriptor string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(userID)
	sess.Image = &ImageContext{
		Data:       data,
		MIMEType:   mimeType,
		Descriptor: descriptor,
		CapturedAt: time.Now(),
	}

	s.logger.Debug().
		Int64("user_id", userID).
		Int("size", len(data)).
		Msg("Image context replaced")
}

// ImageContext returns the stored image context for a user, or nil
func (s *Store) ImageContext(userID int64) *ImageContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getOrCreateLocked(userID).Image
}

// Clear resets a user's history and image context. Idempotent.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[userID]
	if !exists {
		return
	}

	sess.History = nil
	sess.Image = nil

	s.logger.Debug().Int64("user_id", userID).Msg("Session cleared")
}

// Reset drops all sessions. Used during shutdown and restart.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.sessions)
	s.sessions = make(map[int64]*Session)

	if count > 0 {
		s.logger.Info().Int("sessions", count).Msg("All sessions reset")
	}
}

// Count returns the number of active sessions
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// MaxHistory returns the configured history limit
func (s *Store) MaxHistory() int {
	return s.maxHistory
}
