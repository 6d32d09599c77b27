package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/janseva/janseva/internal/extract"
	"github.com/janseva/janseva/internal/faults"
	"github.com/janseva/janseva/internal/i18n"
	"github.com/janseva/janseva/internal/issue"
	"github.com/janseva/janseva/internal/language"
	"github.com/janseva/janseva/internal/session"
)

// clarifyKeys maps a missing report field to its question template.
var clarifyKeys = map[string]string{
	"issue_type":  "clarify.issue_type",
	"description": "clarify.description",
	"city":        "clarify.city",
	"state":       "clarify.state",
}

func (o *Orchestrator) handleIssueReport(ctx context.Context, sess *session.Session, utterance string) (*Response, error) {
	// When a clarification is open, the utterance answers that question
	// directly; extraction would mangle a bare "Nagpur".
	if answered := o.absorbClarificationAnswer(sess, utterance); !answered {
		details, err := o.extractor.Extract(ctx, utterance)
		if err != nil {
			if faults.KindOf(err) != faults.KindValidation {
				return nil, err
			}
			// Unextractable utterance: keep what we have and ask for
			// the next missing field below.
			o.logger.Debug("extraction unusable, keeping known slots", "error", err)
		} else {
			mergeDetails(&sess.Issue, details)
		}
	}

	if missing := missingField(sess.Issue); missing != "" {
		attempts := sess.AskClarification(missing)
		if attempts <= o.opts.ClarificationRounds {
			return &Response{
				Text:       i18n.T(sess.Language, clarifyKeys[missing]),
				Clarifying: true,
			}, nil
		}
		// Rounds exhausted: fill what has a safe default. City never
		// defaults; a report without one cannot be routed to a ward.
		applyDefaults(&sess.Issue, utterance)
		if sess.Issue.City == "" {
			return &Response{
				Text:       i18n.T(sess.Language, "clarify.city"),
				Clarifying: true,
			}, nil
		}
	}

	report := &issue.Report{
		IssueType:   sess.Issue.IssueType,
		Description: sess.Issue.Description,
		Severity:    severityOrDefault(sess.Issue),
		Location: issue.Location{
			City:     sess.Issue.City,
			State:    sess.Issue.State,
			Landmark: sess.Issue.Landmark,
		},
	}
	if err := o.issues.Create(ctx, report); err != nil {
		return nil, err
	}

	// Filed: clear the slots and clarifications for the next report.
	sess.Issue = session.IssueSlots{}
	sess.Pending = nil

	return &Response{
		Text:     i18n.Sprintf(sess.Language, "issue.created", report.TrackingID),
		DataKind: DataIssueReport,
		Data:     report,
	}, nil
}

// absorbClarificationAnswer fills the oldest pending field with the raw
// utterance. Returns false when nothing was pending.
func (o *Orchestrator) absorbClarificationAnswer(sess *session.Session, utterance string) bool {
	if len(sess.Pending) == 0 {
		return false
	}
	field := sess.Pending[0].Field
	value := strings.TrimSpace(utterance)
	switch field {
	case "issue_type":
		sess.Issue.IssueType = normalizeIssueType(value)
	case "description":
		sess.Issue.Description = value
	case "city":
		sess.Issue.City = value
	case "state":
		sess.Issue.State = value
	default:
		return false
	}
	sess.ResolveClarification(field)
	return true
}

// mergeDetails fills empty slots from an extraction without overwriting
// what the citizen already confirmed.
func mergeDetails(slots *session.IssueSlots, d *extract.IssueDetails) {
	if slots.IssueType == "" {
		slots.IssueType = d.Type
	}
	if slots.Description == "" {
		slots.Description = d.Description
	}
	if slots.City == "" {
		slots.City = d.City
	}
	if slots.State == "" {
		slots.State = d.State
	}
	if slots.Landmark == "" {
		slots.Landmark = d.Landmark
	}
	if slots.Severity == "" {
		slots.Severity = d.Severity
	}
}

// missingField returns the first required slot still empty, in ask order.
func missingField(slots session.IssueSlots) string {
	switch {
	case slots.IssueType == "":
		return "issue_type"
	case slots.Description == "":
		return "description"
	case slots.City == "":
		return "city"
	case slots.State == "":
		return "state"
	}
	return ""
}

// applyDefaults fills best-effort values after clarification rounds are
// exhausted. City intentionally has no default.
func applyDefaults(slots *session.IssueSlots, utterance string) {
	if slots.IssueType == "" {
		slots.IssueType = issue.TypeOther
	}
	if slots.Description == "" {
		slots.Description = strings.TrimSpace(utterance)
	}
	if slots.State == "" {
		slots.State = "unknown"
	}
}

func severityOrDefault(slots session.IssueSlots) string {
	if slots.Severity != "" {
		return slots.Severity
	}
	return issue.SeverityMedium
}

func normalizeIssueType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if issue.ValidIssueType(s) {
		return s
	}
	return issue.TypeOther
}

func (o *Orchestrator) handleTracking(ctx context.Context, sess *session.Session, utterance string) (*Response, error) {
	trackingID := issue.FindTrackingID(utterance)
	if trackingID == "" {
		return &Response{
			Text:       i18n.T(sess.Language, "clarify.tracking_id"),
			Clarifying: true,
		}, nil
	}

	report, err := o.issues.Get(ctx, trackingID)
	if err != nil {
		if faults.KindOf(err) == faults.KindNotFound || faults.KindOf(err) == faults.KindValidation {
			return &Response{Text: i18n.Sprintf(sess.Language, "notfound.issue", trackingID)}, nil
		}
		return nil, err
	}

	return &Response{
		Text:     i18n.Sprintf(sess.Language, "issue.status", report.TrackingID, statusText(sess, report.Status)),
		DataKind: DataIssueReport,
		Data:     report,
	}, nil
}

func statusText(sess *session.Session, s issue.Status) string {
	return i18n.T(sess.Language, "status."+string(s))
}

const generalPromptFormat = `You are a helpful bilingual (Hindi/English) assistant for Indian citizens.
Answer briefly in %s. If the question is about government schemes or civic complaints, invite the citizen to describe what they need.

Recent conversation:
%s

Citizen: %s
Answer:`

func (o *Orchestrator) handleGeneral(ctx context.Context, sess *session.Session, utterance string) (*Response, error) {
	langName := "English"
	if sess.Language != language.English {
		langName = "Hindi"
	}
	text, err := o.generate(ctx, fmt.Sprintf(generalPromptFormat,
		langName, historyWindow(sess, o.opts.ContextWindow), utterance))
	if err != nil {
		return nil, err
	}
	return &Response{Text: text}, nil
}
