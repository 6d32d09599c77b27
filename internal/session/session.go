// Package session holds per-conversation state: language preference, active
// topic, collected slots, pending clarifications and the bounded turn
// history. Sessions are TTL-bound; an expired session is indistinguishable
// from a missing one.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/janseva/janseva/internal/language"
	"github.com/janseva/janseva/internal/retrieval"
)

// Topic is the active conversation intent.
type Topic string

const (
	TopicNone            Topic = ""
	TopicSchemeDiscovery Topic = "scheme_discovery"
	TopicIssueReport     Topic = "issue_reporting"
	TopicIssueTracking   Topic = "issue_tracking"
	TopicGeneral         Topic = "general"
)

// Limits on session growth.
const (
	// MaxHistoryTurns bounds the stored history; older turns are dropped
	// first.
	MaxHistoryTurns = 50

	// MaxRememberedSchemes bounds the ordinal-reference window ("the
	// second one").
	MaxRememberedSchemes = 5
)

// Turn is one utterance in the conversation.
type Turn struct {
	Role string    `json:"role"` // "user" or "assistant"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Clarification is an unanswered question the engine has asked, with how
// many times it has asked it.
type Clarification struct {
	Field    string `json:"field"`
	Attempts int    `json:"attempts"`
}

// IssueSlots are the fields collected toward a civic issue report.
type IssueSlots struct {
	IssueType   string `json:"issue_type,omitempty"`
	Description string `json:"description,omitempty"`
	Severity    string `json:"severity,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Landmark    string `json:"landmark,omitempty"`
}

// Session is the full conversation state. It serializes to a single JSON
// blob; the store's version column detects concurrent writers.
type Session struct {
	ID                 string            `json:"id"`
	Language           language.Language `json:"language"`
	Topic              Topic             `json:"topic"`
	Issue              IssueSlots        `json:"issue"`
	Profile            retrieval.Profile `json:"profile"`
	PreviousSchemes    []string          `json:"previous_schemes,omitempty"`
	Pending            []Clarification   `json:"pending,omitempty"`
	History            []Turn            `json:"history,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	LastActiveAt       time.Time         `json:"last_active_at"`
	ExpiresAt          time.Time         `json:"expires_at"`

	// Version is the store's optimistic concurrency token. Zero for a
	// session that has never been persisted.
	Version int64 `json:"-"`
}

// New creates a fresh session with the given TTL. Language starts as Hindi,
// the engine default, until the first utterance is classified.
func New(ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:           uuid.NewString(),
		Language:     language.Hindi,
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(ttl),
	}
}

// Expired reports whether the session's TTL has passed.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Touch extends the TTL from now. Called on every processed turn.
func (s *Session) Touch(ttl time.Duration) {
	now := time.Now().UTC()
	s.LastActiveAt = now
	s.ExpiresAt = now.Add(ttl)
}

// AddTurn appends to the history, dropping the oldest turn past the cap.
func (s *Session) AddTurn(role, text string) {
	s.History = append(s.History, Turn{Role: role, Text: text, At: time.Now().UTC()})
	if len(s.History) > MaxHistoryTurns {
		s.History = s.History[len(s.History)-MaxHistoryTurns:]
	}
}

// TrimHistory drops the oldest turns past limit. MaxHistoryTurns remains the
// ceiling; non-positive or larger limits clamp to it.
func (s *Session) TrimHistory(limit int) {
	if limit <= 0 || limit > MaxHistoryTurns {
		limit = MaxHistoryTurns
	}
	if len(s.History) > limit {
		s.History = s.History[len(s.History)-limit:]
	}
}

// RecentTurns returns the last n turns, most recent last.
func (s *Session) RecentTurns(n int) []Turn {
	if n <= 0 || len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// RememberScheme records a scheme shown to the citizen, most recent first,
// for later ordinal references. Re-mentioning moves a scheme to the front.
func (s *Session) RememberScheme(schemeID string) {
	out := make([]string, 0, len(s.PreviousSchemes)+1)
	out = append(out, schemeID)
	for _, id := range s.PreviousSchemes {
		if id != schemeID {
			out = append(out, id)
		}
	}
	if len(out) > MaxRememberedSchemes {
		out = out[:MaxRememberedSchemes]
	}
	s.PreviousSchemes = out
}

// RememberResults records a result list in display order, so "the second
// one" resolves to the second result of the latest answer.
func (s *Session) RememberResults(schemeIDs []string) {
	for i := len(schemeIDs) - 1; i >= 0; i-- {
		s.RememberScheme(schemeIDs[i])
	}
}

// SchemeAt resolves a one-based ordinal reference against the remembered
// schemes. Returns "" when out of range.
func (s *Session) SchemeAt(ordinal int) string {
	if ordinal < 1 || ordinal > len(s.PreviousSchemes) {
		return ""
	}
	return s.PreviousSchemes[ordinal-1]
}

// PendingFor returns the clarification state for a field, if any.
func (s *Session) PendingFor(field string) *Clarification {
	for i := range s.Pending {
		if s.Pending[i].Field == field {
			return &s.Pending[i]
		}
	}
	return nil
}

// AskClarification records that the engine asked for a field and returns
// the attempt count after the ask.
func (s *Session) AskClarification(field string) int {
	if c := s.PendingFor(field); c != nil {
		c.Attempts++
		return c.Attempts
	}
	s.Pending = append(s.Pending, Clarification{Field: field, Attempts: 1})
	return 1
}

// ResolveClarification drops a pending question once the field is filled.
func (s *Session) ResolveClarification(field string) {
	for i := range s.Pending {
		if s.Pending[i].Field == field {
			s.Pending = append(s.Pending[:i], s.Pending[i+1:]...)
			return
		}
	}
}

// ResetTopic clears topic, slots, clarifications and remembered schemes but
// keeps the identity, language and history. Used on a "new topic" signal.
func (s *Session) ResetTopic() {
	s.Topic = TopicNone
	s.Issue = IssueSlots{}
	s.Pending = nil
	s.PreviousSchemes = nil
}
