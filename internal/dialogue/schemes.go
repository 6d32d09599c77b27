package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/janseva/janseva/internal/faults"
	"github.com/janseva/janseva/internal/i18n"
	"github.com/janseva/janseva/internal/language"
	"github.com/janseva/janseva/internal/retrieval"
	"github.com/janseva/janseva/internal/session"
)

const groundedPromptFormat = `You help Indian citizens find government schemes. Answer in %s.
Use ONLY the scheme information below. Do not invent schemes, amounts or rules.
Keep the answer short and spoken-friendly.

Scheme information:
%s

Recent conversation:
%s

Citizen: %s
Answer:`

// eligibilityWords trigger an eligibility check against a referenced scheme.
var eligibilityWords = []string{"eligible", "eligibility", "patra", "पात्र", "पात्रता", "qualify"}

func (o *Orchestrator) handleSchemes(ctx context.Context, sess *session.Session, utterance string) (*Response, error) {
	// "Tell me about the second one" style references resolve against the
	// schemes already shown.
	if ord := parseOrdinal(utterance); ord > 0 && len(sess.PreviousSchemes) > 0 {
		schemeID := sess.SchemeAt(ord)
		if schemeID == "" {
			return &Response{Text: i18n.T(sess.Language, "notfound.scheme"), Clarifying: true}, nil
		}
		if containsWord(strings.ToLower(utterance), eligibilityWords) {
			return o.eligibilityResponse(ctx, sess, schemeID)
		}
		return o.schemeDetail(ctx, sess, schemeID, utterance)
	}

	set, err := o.schemes.Search(ctx, utterance, sess.Language, "")
	if err != nil {
		return nil, err
	}

	if len(set.Results) == 0 {
		if sess.AskClarification("scheme_query") > o.opts.ClarificationRounds {
			sess.ResolveClarification("scheme_query")
			return &Response{Text: i18n.T(sess.Language, "scheme.none")}, nil
		}
		return &Response{Text: i18n.T(sess.Language, "clarify.scheme"), Clarifying: true}, nil
	}
	sess.ResolveClarification("scheme_query")

	ids := make([]string, len(set.Results))
	for i, r := range set.Results {
		ids[i] = r.SchemeID
	}
	sess.RememberResults(ids)

	text, err := o.groundedAnswer(ctx, sess, utterance, set)
	if err != nil {
		// Generation is decoration; the retrieved results still answer.
		o.logger.Warn("grounded generation failed, using template", "error", err)
		text = templateAnswer(sess.Language, set)
	}

	return &Response{
		Text:     text,
		DataKind: DataSchemeResults,
		Data:     set,
	}, nil
}

func (o *Orchestrator) groundedAnswer(ctx context.Context, sess *session.Session, utterance string, set *retrieval.ResultSet) (string, error) {
	var info strings.Builder
	for i, r := range set.Results {
		fmt.Fprintf(&info, "%d. %s: %s\n", i+1, r.Name, r.Snippet)
	}

	langName := "English"
	if sess.Language == language.Hindi || sess.Language == language.Mixed {
		langName = "Hindi"
	}
	return o.generate(ctx, fmt.Sprintf(groundedPromptFormat,
		langName, info.String(), historyWindow(sess, o.opts.ContextWindow), utterance))
}

// templateAnswer lists the results without generation.
func templateAnswer(lang language.Language, set *retrieval.ResultSet) string {
	var b strings.Builder
	b.WriteString(i18n.T(lang, "scheme.results.intro"))
	for i, r := range set.Results {
		fmt.Fprintf(&b, " %d. %s.", i+1, r.Name)
	}
	return b.String()
}

// schemeDetail answers a follow-up about one specific scheme.
func (o *Orchestrator) schemeDetail(ctx context.Context, sess *session.Session, schemeID, utterance string) (*Response, error) {
	doc, err := o.schemes.GetDocument(ctx, schemeID)
	if err != nil {
		if faults.KindOf(err) == faults.KindNotFound {
			return &Response{Text: i18n.T(sess.Language, "notfound.scheme")}, nil
		}
		return nil, err
	}
	sess.RememberScheme(schemeID)

	lang := sess.Language
	var info strings.Builder
	fmt.Fprintf(&info, "%s: %s\n", doc.Name.In(lang), doc.Description.In(lang))
	for _, line := range doc.Eligibility.In(lang) {
		fmt.Fprintf(&info, "- %s\n", line)
	}
	for _, line := range doc.Benefits.In(lang) {
		fmt.Fprintf(&info, "- %s\n", line)
	}
	if p := doc.Process.In(lang); p != "" {
		fmt.Fprintf(&info, "%s\n", p)
	}

	langName := "English"
	if lang == language.Hindi || lang == language.Mixed {
		langName = "Hindi"
	}
	text, err := o.generate(ctx, fmt.Sprintf(groundedPromptFormat,
		langName, info.String(), historyWindow(sess, o.opts.ContextWindow), utterance))
	if err != nil {
		o.logger.Warn("grounded generation failed, using document text", "error", err)
		text = fmt.Sprintf("%s: %s", doc.Name.In(lang), doc.Description.In(lang))
	}

	set := &retrieval.ResultSet{Results: []retrieval.Result{{
		SchemeID: doc.SchemeID,
		Name:     doc.Name.In(lang),
		Snippet:  doc.Description.In(lang),
		Category: doc.Category,
		Score:    1,
	}}}
	return &Response{Text: text, DataKind: DataSchemeResults, Data: set}, nil
}

// eligibilityResponse runs an advisory eligibility check against what the
// session knows about the citizen.
func (o *Orchestrator) eligibilityResponse(ctx context.Context, sess *session.Session, schemeID string) (*Response, error) {
	res, err := o.schemes.CheckEligibility(ctx, schemeID, sess.Profile, sess.Language)
	if err != nil {
		if faults.KindOf(err) == faults.KindNotFound {
			return &Response{Text: i18n.T(sess.Language, "notfound.scheme")}, nil
		}
		return nil, err
	}
	sess.RememberScheme(schemeID)

	doc, derr := o.schemes.GetDocument(ctx, schemeID)
	name := schemeID
	if derr == nil {
		name = doc.Name.In(sess.Language)
	}

	key := "eligibility.ineligible"
	if res.Eligible {
		key = "eligibility.eligible"
	}
	return &Response{
		Text:     i18n.Sprintf(sess.Language, key, name),
		DataKind: DataEligibility,
		Data:     res,
	}, nil
}
