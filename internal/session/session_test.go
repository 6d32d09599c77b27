package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janseva/janseva/internal/language"
)

func TestNewSessionDefaults(t *testing.T) {
	s := New(30 * time.Minute)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, language.Hindi, s.Language)
	assert.Equal(t, TopicNone, s.Topic)
	assert.False(t, s.Expired(time.Now().UTC()))
	assert.True(t, s.Expired(time.Now().UTC().Add(31*time.Minute)))
}

func TestTouchExtendsTTL(t *testing.T) {
	s := New(time.Minute)
	before := s.ExpiresAt

	time.Sleep(2 * time.Millisecond)
	s.Touch(30 * time.Minute)

	assert.True(t, s.ExpiresAt.After(before))
	assert.False(t, s.Expired(time.Now().UTC().Add(time.Minute)))
}

func TestHistoryBounded(t *testing.T) {
	s := New(time.Minute)
	for i := 0; i < MaxHistoryTurns+10; i++ {
		s.AddTurn("user", fmt.Sprintf("turn %d", i))
	}

	assert.Len(t, s.History, MaxHistoryTurns)
	assert.Equal(t, "turn 10", s.History[0].Text, "oldest turns dropped first")
	assert.Equal(t, fmt.Sprintf("turn %d", MaxHistoryTurns+9), s.History[len(s.History)-1].Text)
}

func TestTrimHistory(t *testing.T) {
	s := New(time.Minute)
	for i := 0; i < 20; i++ {
		s.AddTurn("user", fmt.Sprintf("turn %d", i))
	}

	s.TrimHistory(6)
	require.Len(t, s.History, 6)
	assert.Equal(t, "turn 14", s.History[0].Text)

	// Non-positive and oversized limits clamp to the hard ceiling.
	s.TrimHistory(0)
	assert.Len(t, s.History, 6)
	s.TrimHistory(MaxHistoryTurns + 100)
	assert.Len(t, s.History, 6)
}

func TestRecentTurnsWindow(t *testing.T) {
	s := New(time.Minute)
	for i := 0; i < 10; i++ {
		s.AddTurn("user", fmt.Sprintf("turn %d", i))
	}

	recent := s.RecentTurns(3)
	require.Len(t, recent, 3)
	assert.Equal(t, "turn 7", recent[0].Text)

	assert.Len(t, s.RecentTurns(100), 10)
}

func TestRememberSchemeMRU(t *testing.T) {
	s := New(time.Minute)
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		s.RememberScheme(id)
	}

	assert.Equal(t, []string{"f", "e", "d", "c", "b"}, s.PreviousSchemes)

	// Re-mentioning moves to the front without duplicating.
	s.RememberScheme("d")
	assert.Equal(t, []string{"d", "f", "e", "c", "b"}, s.PreviousSchemes)
}

func TestRememberResultsKeepsDisplayOrder(t *testing.T) {
	s := New(time.Minute)
	s.RememberResults([]string{"first", "second", "third"})

	assert.Equal(t, "first", s.SchemeAt(1))
	assert.Equal(t, "second", s.SchemeAt(2))
	assert.Equal(t, "third", s.SchemeAt(3))
	assert.Empty(t, s.SchemeAt(4))
	assert.Empty(t, s.SchemeAt(0))
}

func TestClarificationAttempts(t *testing.T) {
	s := New(time.Minute)

	assert.Equal(t, 1, s.AskClarification("city"))
	assert.Equal(t, 2, s.AskClarification("city"))
	assert.Equal(t, 1, s.AskClarification("issue_type"))

	s.ResolveClarification("city")
	assert.Nil(t, s.PendingFor("city"))
	assert.NotNil(t, s.PendingFor("issue_type"))
}

func TestResetTopicKeepsIdentityAndHistory(t *testing.T) {
	s := New(time.Minute)
	s.Language = language.English
	s.Topic = TopicIssueReport
	s.Issue = IssueSlots{IssueType: "pothole", City: "Pune"}
	s.AskClarification("description")
	s.RememberScheme("pm-kisan")
	s.AddTurn("user", "hello")

	id := s.ID
	s.ResetTopic()

	assert.Equal(t, id, s.ID)
	assert.Equal(t, language.English, s.Language)
	assert.Len(t, s.History, 1)
	assert.Equal(t, TopicNone, s.Topic)
	assert.Empty(t, s.Issue)
	assert.Empty(t, s.Pending)
	assert.Empty(t, s.PreviousSchemes)
}
