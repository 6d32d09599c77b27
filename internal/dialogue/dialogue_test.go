package dialogue

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janseva/janseva/internal/extract"
	"github.com/janseva/janseva/internal/faults"
	"github.com/janseva/janseva/internal/i18n"
	"github.com/janseva/janseva/internal/issue"
	"github.com/janseva/janseva/internal/language"
	"github.com/janseva/janseva/internal/retrieval"
	"github.com/janseva/janseva/internal/scheme"
	"github.com/janseva/janseva/internal/session"
)

// In-memory session store.
type memSessions struct {
	byID  map[string]*session.Session
	saves int
}

func newMemSessions() *memSessions {
	return &memSessions{byID: make(map[string]*session.Session)}
}

func (m *memSessions) Get(_ context.Context, id string) (*session.Session, error) {
	s, ok := m.byID[id]
	if !ok || s.Expired(time.Now().UTC()) {
		return nil, faults.NotFoundf("session %q", id)
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) Save(_ context.Context, s *session.Session) error {
	m.saves++
	cp := *s
	m.byID[s.ID] = &cp
	return nil
}

type fakeFinder struct {
	sets map[string]*retrieval.ResultSet // keyed by query substring
	docs map[string]*scheme.Document
	elig *retrieval.EligibilityResult

	eligProfile retrieval.Profile // profile passed to the last eligibility check
}

func (f *fakeFinder) Search(_ context.Context, query string, _ language.Language, _ string) (*retrieval.ResultSet, error) {
	for substr, set := range f.sets {
		if strings.Contains(query, substr) {
			return set, nil
		}
	}
	return &retrieval.ResultSet{}, nil
}

func (f *fakeFinder) GetDocument(_ context.Context, schemeID string) (*scheme.Document, error) {
	doc, ok := f.docs[schemeID]
	if !ok {
		return nil, faults.NotFoundf("scheme %q", schemeID)
	}
	return doc, nil
}

func (f *fakeFinder) CheckEligibility(_ context.Context, schemeID string, profile retrieval.Profile, _ language.Language) (*retrieval.EligibilityResult, error) {
	f.eligProfile = profile
	if f.elig == nil {
		return nil, faults.NotFoundf("scheme %q", schemeID)
	}
	return f.elig, nil
}

type fakeFiler struct {
	reports map[string]*issue.Report
	created []*issue.Report
}

func newFakeFiler() *fakeFiler {
	return &fakeFiler{reports: make(map[string]*issue.Report)}
}

func (f *fakeFiler) Create(_ context.Context, r *issue.Report) error {
	r.TrackingID = issue.NewTrackingID(time.Now())
	r.Status = issue.StatusSubmitted
	f.created = append(f.created, r)
	f.reports[r.TrackingID] = r
	return nil
}

func (f *fakeFiler) Get(_ context.Context, trackingID string) (*issue.Report, error) {
	r, ok := f.reports[trackingID]
	if !ok {
		return nil, faults.NotFoundf("issue %q", trackingID)
	}
	return r, nil
}

func (f *fakeFiler) AddFollowup(_ context.Context, _, _ string) error { return nil }

type fakeExtractor struct {
	details *extract.IssueDetails
	err     error
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) (*extract.IssueDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.details
	return &cp, nil
}

type fakeGen struct {
	reply string
	err   error
}

func (f *fakeGen) Generate(_ context.Context, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestOrchestrator(sessions SessionStore, finder SchemeFinder, filer IssueFiler, ex IssueExtractor, gen Generator) *Orchestrator {
	return New(sessions, finder, filer, ex, gen, DefaultOptions(), nil)
}

func widowPensionSet() *retrieval.ResultSet {
	return &retrieval.ResultSet{Results: []retrieval.Result{
		{SchemeID: "widow-pension", Name: "विधवा पेंशन योजना", Snippet: "मासिक पेंशन", Score: 0.81},
		{SchemeID: "old-age-pension", Name: "वृद्धावस्था पेंशन", Snippet: "वृद्धों के लिए", Score: 0.77},
	}}
}

func TestProcessSchemeDiscovery(t *testing.T) {
	sessions := newMemSessions()
	finder := &fakeFinder{sets: map[string]*retrieval.ResultSet{"पेंशन": widowPensionSet()}}
	o := newTestOrchestrator(sessions, finder, newFakeFiler(), &fakeExtractor{}, &fakeGen{reply: "ये योजनाएं मिलीं।"})

	resp, err := o.Process(context.Background(), "", "विधवा पेंशन योजना के बारे में बताओ")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, language.Hindi, resp.Language)
	assert.Equal(t, DataSchemeResults, resp.DataKind)
	assert.Equal(t, "ये योजनाएं मिलीं।", resp.Text)

	saved := sessions.byID[resp.SessionID]
	require.NotNil(t, saved)
	assert.Equal(t, []string{"widow-pension", "old-age-pension"}, saved.PreviousSchemes)
	assert.Len(t, saved.History, 2)
}

func TestProcessOrdinalReference(t *testing.T) {
	sessions := newMemSessions()
	finder := &fakeFinder{
		sets: map[string]*retrieval.ResultSet{"पेंशन": widowPensionSet()},
		docs: map[string]*scheme.Document{
			"old-age-pension": {
				SchemeID: "old-age-pension",
				Name:     scheme.Bilingual{EN: "Old Age Pension", HI: "वृद्धावस्था पेंशन"},
			},
		},
	}
	o := newTestOrchestrator(sessions, finder, newFakeFiler(), &fakeExtractor{}, &fakeGen{reply: "यह योजना वृद्धों के लिए है।"})

	resp, err := o.Process(context.Background(), "", "पेंशन योजना बताओ")
	require.NoError(t, err)

	resp2, err := o.Process(context.Background(), resp.SessionID, "दूसरी योजना के बारे में बताओ")
	require.NoError(t, err)

	assert.Equal(t, DataSchemeResults, resp2.DataKind)
	set, ok := resp2.Data.(*retrieval.ResultSet)
	require.True(t, ok)
	require.Len(t, set.Results, 1)
	assert.Equal(t, "old-age-pension", set.Results[0].SchemeID)
}

func TestProcessEligibilityUsesStatedProfile(t *testing.T) {
	sessions := newMemSessions()
	finder := &fakeFinder{
		sets: map[string]*retrieval.ResultSet{"पेंशन": widowPensionSet()},
		elig: &retrieval.EligibilityResult{SchemeID: "widow-pension", Eligible: true},
	}
	o := newTestOrchestrator(sessions, finder, newFakeFiler(), &fakeExtractor{}, &fakeGen{reply: "ok"})

	resp, err := o.Process(context.Background(), "", "main 65 saal ki vidhwa hoon, meri income 50000 hai, पेंशन yojana batao")
	require.NoError(t, err)

	resp2, err := o.Process(context.Background(), resp.SessionID, "kya main pehli yojana ke liye patra hoon")
	require.NoError(t, err)

	assert.Equal(t, DataEligibility, resp2.DataKind)
	assert.Equal(t, 65, finder.eligProfile.Age, "stated age must reach the eligibility check")
	assert.Equal(t, int64(50000), finder.eligProfile.AnnualIncome)
	assert.Equal(t, "female", finder.eligProfile.Gender)
}

func TestProcessIssueReportClarification(t *testing.T) {
	sessions := newMemSessions()
	ex := &fakeExtractor{details: &extract.IssueDetails{
		Type:        "streetlight",
		Description: "streetlight not working at night",
		Severity:    "medium",
		// city and state missing
	}}
	filer := newFakeFiler()
	o := newTestOrchestrator(sessions, &fakeFinder{}, filer, ex, &fakeGen{reply: "ok"})

	resp, err := o.Process(context.Background(), "", "streetlight kharab hai, kya complaint karni hai mujhe")
	require.NoError(t, err)

	assert.True(t, resp.Clarifying)
	assert.Equal(t, i18n.T(language.Mixed, "clarify.city"), resp.Text)
	assert.Empty(t, filer.created)

	// The bare answer fills the slot, then the next missing field is asked.
	resp2, err := o.Process(context.Background(), resp.SessionID, "Nagpur")
	require.NoError(t, err)
	assert.True(t, resp2.Clarifying)

	resp3, err := o.Process(context.Background(), resp2.SessionID, "Maharashtra")
	require.NoError(t, err)

	assert.False(t, resp3.Clarifying)
	assert.Equal(t, DataIssueReport, resp3.DataKind)
	require.Len(t, filer.created, 1)
	assert.Equal(t, "Nagpur", filer.created[0].Location.City)
	assert.Equal(t, "streetlight", filer.created[0].IssueType)
	assert.Contains(t, resp3.Text, filer.created[0].TrackingID)
}

func TestProcessIssueTracking(t *testing.T) {
	sessions := newMemSessions()
	filer := newFakeFiler()
	report := &issue.Report{
		IssueType:   "pothole",
		Description: "gaddha",
		Location:    issue.Location{City: "Pune"},
	}
	require.NoError(t, filer.Create(context.Background(), report))

	o := newTestOrchestrator(sessions, &fakeFinder{}, filer, &fakeExtractor{}, &fakeGen{reply: "ok"})

	resp, err := o.Process(context.Background(), "", "mera complaint "+report.TrackingID+" ka kya hua")
	require.NoError(t, err)

	assert.Equal(t, DataIssueReport, resp.DataKind)
	assert.Contains(t, resp.Text, report.TrackingID)
}

func TestProcessTrackingUnknownID(t *testing.T) {
	o := newTestOrchestrator(newMemSessions(), &fakeFinder{}, newFakeFiler(), &fakeExtractor{}, &fakeGen{reply: "ok"})

	resp, err := o.Process(context.Background(), "", "complaint JS-20250101-00042 status batao")
	require.NoError(t, err)

	assert.Equal(t, DataNone, resp.DataKind)
	assert.Contains(t, resp.Text, "JS-20250101-00042")
}

func TestProcessExpiredSessionStartsFresh(t *testing.T) {
	sessions := newMemSessions()
	stale := session.New(-time.Minute)
	sessions.byID[stale.ID] = stale

	o := newTestOrchestrator(sessions, &fakeFinder{}, newFakeFiler(), &fakeExtractor{}, &fakeGen{reply: "hello"})

	resp, err := o.Process(context.Background(), stale.ID, "hello there, how are you today")
	require.NoError(t, err)

	assert.NotEqual(t, stale.ID, resp.SessionID, "expired session must not be resumed")
}

func TestProcessDegradesOnTransientFailure(t *testing.T) {
	o := newTestOrchestrator(newMemSessions(), &fakeFinder{}, newFakeFiler(), &fakeExtractor{},
		&fakeGen{err: faults.Transientf("model unavailable")})

	resp, err := o.Process(context.Background(), "", "hello there, how are you today")
	require.NoError(t, err)

	assert.Equal(t, i18n.T(language.English, "fallback.transient"), resp.Text)
	assert.NotContains(t, resp.Text, "model unavailable")
}

func TestProcessCancelDiscardsTurn(t *testing.T) {
	sessions := newMemSessions()
	o := newTestOrchestrator(sessions, &fakeFinder{}, newFakeFiler(), &fakeExtractor{}, &fakeGen{reply: "hi"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Process(ctx, "", "hello there, how are you today")
	require.Error(t, err)
	assert.Zero(t, sessions.saves, "canceled turn must not commit the session")
}

func TestProcessLanguageSticksWhenUncertain(t *testing.T) {
	sessions := newMemSessions()
	o := newTestOrchestrator(sessions, &fakeFinder{}, newFakeFiler(), &fakeExtractor{}, &fakeGen{reply: "ok"})

	resp, err := o.Process(context.Background(), "", "सरकारी मदद के बारे में जानकारी चाहिए")
	require.NoError(t, err)
	assert.Equal(t, language.Hindi, resp.Language)

	// "ok" is too short to classify; the session keeps Hindi.
	resp2, err := o.Process(context.Background(), resp.SessionID, "ok")
	require.NoError(t, err)
	assert.Equal(t, language.Hindi, resp2.Language)
}

func TestNewTopicSignalClearsSlots(t *testing.T) {
	sessions := newMemSessions()
	ex := &fakeExtractor{details: &extract.IssueDetails{Type: "pothole"}}
	o := newTestOrchestrator(sessions, &fakeFinder{}, newFakeFiler(), ex, &fakeGen{reply: "ok"})

	resp, err := o.Process(context.Background(), "", "gaddha hai road par")
	require.NoError(t, err)
	require.True(t, resp.Clarifying)

	resp2, err := o.Process(context.Background(), resp.SessionID, "new topic please, tell me a story")
	require.NoError(t, err)

	saved := sessions.byID[resp2.SessionID]
	assert.Empty(t, saved.Issue.IssueType, "new topic must clear collected slots")
	assert.NotEmpty(t, saved.History, "history survives a topic switch")
}

func TestSegmentLongResponse(t *testing.T) {
	long := strings.Repeat("यह एक वाक्य है। ", 40)
	segs := segment(long, 280)

	require.Greater(t, len(segs), 1)
	for _, s := range segs {
		assert.LessOrEqual(t, len([]rune(s)), 280)
	}
	assert.Nil(t, segment("छोटा वाक्य।", 280))
}

func TestClassifyPrecedence(t *testing.T) {
	o := newTestOrchestrator(newMemSessions(), &fakeFinder{}, newFakeFiler(), &fakeExtractor{}, &fakeGen{reply: "general"})
	sess := session.New(time.Minute)

	tests := []struct {
		utterance string
		want      session.Topic
	}{
		{"JS-20250101-00042 ka status", session.TopicIssueTracking},
		{"road par gaddha hai", session.TopicIssueReport},
		{"vidhwa pension yojana", session.TopicSchemeDiscovery},
		{"complaint ka kya hua", session.TopicIssueTracking},
	}
	for _, tt := range tests {
		got := o.classify(context.Background(), sess, tt.utterance)
		assert.Equal(t, tt.want, got, "utterance %q", tt.utterance)
	}
}

func TestParseOrdinalEarliestWins(t *testing.T) {
	assert.Equal(t, 2, parseOrdinal("doosri yojana batao, pehli nahi"))
	assert.Equal(t, 1, parseOrdinal("pehli yojana ke liye patra hoon, doosri nahi"))
	assert.Equal(t, 3, parseOrdinal("तीसरी योजना के बारे में बताओ"))
	assert.Equal(t, 0, parseOrdinal("yojana batao"))
}

func TestClassifyGenerativeFallback(t *testing.T) {
	o := newTestOrchestrator(newMemSessions(), &fakeFinder{}, newFakeFiler(), &fakeExtractor{},
		&fakeGen{reply: "scheme_discovery"})
	sess := session.New(time.Minute)

	got := o.classify(context.Background(), sess, "main apni beti ki padhai ke liye madad chahta hoon")
	assert.Equal(t, session.TopicSchemeDiscovery, got)
}

func TestClassifyPendingKeepsTopic(t *testing.T) {
	o := newTestOrchestrator(newMemSessions(), &fakeFinder{}, newFakeFiler(), &fakeExtractor{}, &fakeGen{reply: "general"})
	sess := session.New(time.Minute)
	sess.Topic = session.TopicIssueReport
	sess.AskClarification("city")

	got := o.classify(context.Background(), sess, "Nagpur")
	assert.Equal(t, session.TopicIssueReport, got)
}
