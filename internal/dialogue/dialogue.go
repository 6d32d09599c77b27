// Package dialogue orchestrates a conversation turn: language detection,
// topic classification, routing to the scheme, issue and tracking flows,
// clarification loops and the degraded fallbacks that keep internal errors
// away from the citizen.
package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/janseva/janseva/internal/extract"
	"github.com/janseva/janseva/internal/faults"
	"github.com/janseva/janseva/internal/i18n"
	"github.com/janseva/janseva/internal/issue"
	"github.com/janseva/janseva/internal/language"
	"github.com/janseva/janseva/internal/retrieval"
	"github.com/janseva/janseva/internal/scheme"
	"github.com/janseva/janseva/internal/session"
)

// SchemeFinder is the retrieval surface the orchestrator uses.
type SchemeFinder interface {
	Search(ctx context.Context, query string, lang language.Language, category string) (*retrieval.ResultSet, error)
	GetDocument(ctx context.Context, schemeID string) (*scheme.Document, error)
	CheckEligibility(ctx context.Context, schemeID string, profile retrieval.Profile, lang language.Language) (*retrieval.EligibilityResult, error)
}

// IssueFiler is the issue surface the orchestrator uses.
type IssueFiler interface {
	Create(ctx context.Context, r *issue.Report) error
	Get(ctx context.Context, trackingID string) (*issue.Report, error)
	AddFollowup(ctx context.Context, trackingID, text string) error
}

// IssueExtractor turns free text into a structured issue draft.
type IssueExtractor interface {
	Extract(ctx context.Context, utterance string) (*extract.IssueDetails, error)
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SessionStore persists conversation state.
type SessionStore interface {
	Get(ctx context.Context, id string) (*session.Session, error)
	Save(ctx context.Context, s *session.Session) error
}

// DataKind tags the structured payload of a Response.
type DataKind string

const (
	DataNone          DataKind = ""
	DataSchemeResults DataKind = "scheme_results"
	DataIssueReport   DataKind = "issue_report"
	DataEligibility   DataKind = "eligibility"
)

// Response is one turn's answer.
type Response struct {
	SessionID   string            `json:"session_id"`
	Text        string            `json:"text"`
	Language    language.Language `json:"language"`
	Segments    []string          `json:"segments,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
	DataKind    DataKind          `json:"data_kind,omitempty"`
	Data        any               `json:"data,omitempty"`

	// Clarifying marks a turn that asks the citizen a question instead of
	// answering one.
	Clarifying bool `json:"clarifying,omitempty"`
}

// Options controls conversation policy.
type Options struct {
	SessionTTL          time.Duration
	ContextWindow       int // turns of history fed to generation
	HistoryTurns        int // stored turns kept per session
	ClarificationRounds int // per-field ask limit
	SpokenSegmentRunes  int // segment threshold for synthesis
	CallTimeout         time.Duration
	ConfidenceThreshold float64 // below it, keep the session language
}

// DefaultOptions returns the production conversation policy.
func DefaultOptions() Options {
	return Options{
		SessionTTL:          30 * time.Minute,
		ContextWindow:       5,
		HistoryTurns:        session.MaxHistoryTurns,
		ClarificationRounds: 2,
		SpokenSegmentRunes:  280,
		CallTimeout:         30 * time.Second,
		ConfidenceThreshold: 0.6,
	}
}

// Orchestrator routes conversation turns.
type Orchestrator struct {
	sessions  SessionStore
	schemes   SchemeFinder
	issues    IssueFiler
	extractor IssueExtractor
	generator Generator
	opts      Options
	logger    *slog.Logger
}

// New creates an Orchestrator.
func New(sessions SessionStore, schemes SchemeFinder, issues IssueFiler, extractor IssueExtractor, generator Generator, opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SessionTTL <= 0 {
		opts = DefaultOptions()
	}
	return &Orchestrator{
		sessions:  sessions,
		schemes:   schemes,
		issues:    issues,
		extractor: extractor,
		generator: generator,
		opts:      opts,
		logger:    logger,
	}
}

// Process handles one citizen turn. sessionID may be empty or stale; the
// returned Response always carries the id to use for the next turn. Internal
// failures degrade to a canned answer in the session language; the error
// return is reserved for failures of the turn itself, such as cancellation.
func (o *Orchestrator) Process(ctx context.Context, sessionID, utterance string) (*Response, error) {
	sess := o.loadOrCreate(ctx, sessionID)

	det := language.Detect(utterance)
	if det.Confidence >= o.opts.ConfidenceThreshold {
		sess.Language = det.Language
	}

	// Personal facts stated in passing feed later eligibility checks.
	absorbProfile(&sess.Profile, utterance)

	if isNewTopicSignal(utterance) {
		sess.ResetTopic()
	}

	topic := o.classify(ctx, sess, utterance)
	sess.Topic = topic

	resp := o.route(ctx, sess, topic, utterance)
	resp.SessionID = sess.ID
	resp.Language = sess.Language
	resp.Segments = segment(resp.Text, o.opts.SpokenSegmentRunes)
	if len(resp.Suggestions) == 0 {
		resp.Suggestions = defaultSuggestions(sess.Language)
	}

	sess.AddTurn("user", utterance)
	sess.AddTurn("assistant", resp.Text)
	sess.TrimHistory(o.opts.HistoryTurns)
	sess.Touch(o.opts.SessionTTL)

	// A canceled request discards the turn rather than committing a
	// half-processed session.
	if err := ctx.Err(); err != nil {
		return nil, faults.Transient(fmt.Errorf("turn canceled: %w", err))
	}
	if err := o.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return resp, nil
}

// loadOrCreate returns the stored session or a fresh one. Expired and
// missing sessions both start fresh, under a new id.
func (o *Orchestrator) loadOrCreate(ctx context.Context, sessionID string) *session.Session {
	if sessionID == "" {
		return session.New(o.opts.SessionTTL)
	}
	sess, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		if faults.KindOf(err) != faults.KindNotFound {
			o.logger.Warn("session load failed, starting fresh", "session_id", sessionID, "error", err)
		}
		return session.New(o.opts.SessionTTL)
	}
	return sess
}

func (o *Orchestrator) route(ctx context.Context, sess *session.Session, topic session.Topic, utterance string) *Response {
	ctx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
	defer cancel()

	var resp *Response
	var err error
	switch topic {
	case session.TopicIssueTracking:
		resp, err = o.handleTracking(ctx, sess, utterance)
	case session.TopicIssueReport:
		resp, err = o.handleIssueReport(ctx, sess, utterance)
	case session.TopicSchemeDiscovery:
		resp, err = o.handleSchemes(ctx, sess, utterance)
	default:
		resp, err = o.handleGeneral(ctx, sess, utterance)
	}
	if err != nil {
		return o.degraded(sess, err)
	}
	return resp
}

// degraded converts any internal failure into a canned citizen-facing
// answer. Raw error text never leaves the engine.
func (o *Orchestrator) degraded(sess *session.Session, err error) *Response {
	o.logger.Error("turn degraded", "session_id", sess.ID, "topic", sess.Topic, "error", err)

	key := "fallback.generic"
	switch faults.KindOf(err) {
	case faults.KindTransient:
		key = "fallback.transient"
	case faults.KindCapacity:
		key = "fallback.capacity"
	}
	return &Response{Text: i18n.T(sess.Language, key)}
}

func defaultSuggestions(lang language.Language) []string {
	return []string{
		i18n.T(lang, "suggest.scheme"),
		i18n.T(lang, "suggest.issue"),
		i18n.T(lang, "suggest.track"),
	}
}

// generate runs the generator and classifies its failure for the degraded
// path.
func (o *Orchestrator) generate(ctx context.Context, prompt string) (string, error) {
	text, err := o.generator.Generate(ctx, prompt)
	if err != nil {
		if faults.KindOf(err) == faults.KindUnknown {
			err = faults.Transient(err)
		}
		return "", err
	}
	return text, nil
}

// historyWindow renders the last turns for a generation prompt.
func historyWindow(sess *session.Session, n int) string {
	turns := sess.RecentTurns(n)
	var b []byte
	for _, t := range turns {
		b = append(b, t.Role...)
		b = append(b, ": "...)
		b = append(b, t.Text...)
		b = append(b, '\n')
	}
	return string(b)
}
