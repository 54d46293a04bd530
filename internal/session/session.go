package session

import (
	"errors"
	"sync"
	"time"

	"github.com/thariqabe666/finalproj-group-2/internal/interview"
	"github.com/thariqabe666/finalproj-group-2/internal/profile"
)

// Message roles as they appear in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrInterviewActive is returned when a turn tries to start an interview
// while one is already running in the session.
var ErrInterviewActive = errors.New("an interview is already active in this session")

// Message is one entry in a session's conversation history. History is
// append-only; recorded messages are never rewritten.
type Message struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	AgentID   string         `json:"agent_id,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Session holds one conversation's accumulated state. Turn serialization is
// separate from data access: TurnLock guards the whole turn, the data mutex
// guards reads that may race with it.
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	turnMu sync.Mutex
	dataMu sync.RWMutex

	messages  []Message
	profile   *profile.Summary
	interview *interview.State
}

// NewSession creates an empty session.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{ID: id, CreatedAt: now, UpdatedAt: now}
}

// LockTurn serializes turn processing within the session. Turns in other
// sessions proceed in parallel.
func (s *Session) LockTurn()   { s.turnMu.Lock() }
func (s *Session) UnlockTurn() { s.turnMu.Unlock() }

// Append records a message at the end of the history.
func (s *Session) Append(msg Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.messages = append(s.messages, msg)
	s.UpdatedAt = msg.Timestamp
}

// History returns a copy of the recorded messages in append order.
func (s *Session) History() []Message {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Profile returns the stored user profile, or an empty one.
func (s *Session) Profile() *profile.Summary {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()

	if s.profile == nil {
		return &profile.Summary{}
	}
	return s.profile
}

// SetProfile replaces the stored user profile.
func (s *Session) SetProfile(p *profile.Summary) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.profile = p
	s.UpdatedAt = time.Now().UTC()
}

// Interview returns the session's interview state, nil when none exists.
func (s *Session) Interview() *interview.State {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return s.interview
}

// BeginInterview installs a fresh interview state. At most one interview may
// be active per session; a concluded one may be replaced.
func (s *Session) BeginInterview(st *interview.State) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()

	if s.interview != nil && s.interview.Phase != interview.PhaseConcluded && s.interview.Phase != interview.PhaseNotStarted {
		return ErrInterviewActive
	}
	s.interview = st
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// InterviewActive reports whether an interview is mid-flight.
func (s *Session) InterviewActive() bool {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()

	return s.interview != nil &&
		s.interview.Phase != interview.PhaseNotStarted &&
		s.interview.Phase != interview.PhaseConcluded
}
