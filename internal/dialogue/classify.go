package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/janseva/janseva/internal/issue"
	"github.com/janseva/janseva/internal/session"
)

// newTopicSignals are explicit topic-switch phrases in either language.
var newTopicSignals = []string{
	"new topic", "change topic", "something else",
	"nayi baat", "doosri baat", "naya sawal",
	"नया विषय", "दूसरी बात", "कुछ और पूछना है",
}

func isNewTopicSignal(utterance string) bool {
	lower := strings.ToLower(utterance)
	for _, sig := range newTopicSignals {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

// Keyword sets for deterministic classification. Generative classification
// only runs when none of these fire.
var (
	trackingWords = []string{
		"status", "kya hua", "kab tak", "track", "complaint number", "tracking",
		"स्थिति", "क्या हुआ", "कब तक",
	}
	issueWords = []string{
		"pothole", "gaddha", "streetlight", "street light", "garbage", "kachra",
		"sewage", "naali", "nali", "complaint", "shikayat", "report", "overflow",
		"pani nahi", "bijli nahi", "road kharab", "kharab hai",
		"गड्ढा", "शिकायत", "कचरा", "नाली", "स्ट्रीट लाइट", "सड़क खराब", "पानी नहीं", "बिजली नहीं",
	}
	schemeWords = []string{
		"scheme", "yojana", "pension", "subsidy", "benefit", "sahayata", "anudan",
		"scholarship", "ration", "awas", "eligible", "eligibility", "patra",
		"योजना", "पेंशन", "सहायता", "अनुदान", "छात्रवृत्ति", "राशन", "आवास", "पात्र", "पात्रता",
	}
)

func containsWord(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

const classifyPromptFormat = `Classify the citizen message into exactly one label:
scheme_discovery - asking about government schemes, benefits, eligibility
issue_reporting - reporting a civic problem
issue_tracking - asking about an existing complaint
general - anything else

Message: %s

Reply with the label only.`

// classify picks the topic for this turn. Precedence: an embedded tracking
// id, an unanswered clarification on the active topic, keyword match,
// generative fallback, general.
func (o *Orchestrator) classify(ctx context.Context, sess *session.Session, utterance string) session.Topic {
	if issue.FindTrackingID(utterance) != "" {
		return session.TopicIssueTracking
	}

	// An open clarification keeps the citizen's answer on the topic that
	// asked the question.
	if len(sess.Pending) > 0 && sess.Topic != session.TopicNone {
		return sess.Topic
	}

	lower := strings.ToLower(utterance)
	switch {
	case containsWord(lower, trackingWords) && containsWord(lower, issueWords):
		return session.TopicIssueTracking
	case containsWord(lower, issueWords):
		return session.TopicIssueReport
	case containsWord(lower, schemeWords):
		return session.TopicSchemeDiscovery
	}

	// Ordinal references stay on an active scheme conversation.
	if sess.Topic == session.TopicSchemeDiscovery && parseOrdinal(utterance) > 0 {
		return session.TopicSchemeDiscovery
	}

	if label, err := o.generate(ctx, fmt.Sprintf(classifyPromptFormat, utterance)); err == nil {
		switch strings.TrimSpace(strings.ToLower(label)) {
		case "scheme_discovery":
			return session.TopicSchemeDiscovery
		case "issue_reporting":
			return session.TopicIssueReport
		case "issue_tracking":
			return session.TopicIssueTracking
		}
	}
	return session.TopicGeneral
}

// ordinalWords maps ordinal references to one-based result positions.
// Kept as an ordered slice so an utterance containing two ordinals resolves
// the same way every time: the one appearing earliest wins.
var ordinalWords = []struct {
	word string
	n    int
}{
	{"first", 1}, {"pehla", 1}, {"pehli", 1}, {"पहला", 1}, {"पहली", 1},
	{"second", 2}, {"doosra", 2}, {"doosri", 2}, {"dusra", 2}, {"dusri", 2}, {"दूसरा", 2}, {"दूसरी", 2},
	{"third", 3}, {"teesra", 3}, {"teesri", 3}, {"तीसरा", 3}, {"तीसरी", 3},
	{"fourth", 4}, {"chautha", 4}, {"चौथा", 4}, {"चौथी", 4},
	{"fifth", 5}, {"paanchva", 5}, {"पांचवां", 5}, {"पांचवीं", 5},
}

// parseOrdinal finds the earliest ordinal reference in the utterance, or 0.
func parseOrdinal(utterance string) int {
	lower := strings.ToLower(utterance)
	best, bestIdx := 0, -1
	for _, ow := range ordinalWords {
		if i := strings.Index(lower, ow.word); i >= 0 && (bestIdx < 0 || i < bestIdx) {
			best, bestIdx = ow.n, i
		}
	}
	return best
}
