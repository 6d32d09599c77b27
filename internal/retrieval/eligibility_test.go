package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janseva/janseva/internal/faults"
	"github.com/janseva/janseva/internal/language"
	"github.com/janseva/janseva/internal/scheme"
)

func pensionDoc() *scheme.Document {
	return &scheme.Document{
		SchemeID: "old-age-pension",
		Version:  2,
		Name:     scheme.Bilingual{EN: "Old Age Pension", HI: "वृद्धावस्था पेंशन"},
		Eligibility: scheme.BilingualList{
			EN: []string{
				"Age above 60",
				"Annual income below 2 lakh",
			},
			HI: []string{
				"आयु 60 वर्ष से अधिक",
				"वार्षिक आय 2 लाख से कम",
			},
		},
	}
}

func TestCheckEligibilityRuleMatch(t *testing.T) {
	s := &stubSearcher{docs: map[string]*scheme.Document{"old-age-pension": pensionDoc()}}
	r := New(s, stubEmbedder{}, nil, DefaultOptions(), nil)

	res, err := r.CheckEligibility(context.Background(), "old-age-pension",
		Profile{Age: 65, AnnualIncome: 150_000}, language.English)
	require.NoError(t, err)

	assert.True(t, res.Eligible)
	assert.Len(t, res.Matched, 2)
	assert.Empty(t, res.Unmatched)
}

func TestCheckEligibilityRuleFail(t *testing.T) {
	s := &stubSearcher{docs: map[string]*scheme.Document{"old-age-pension": pensionDoc()}}
	r := New(s, stubEmbedder{}, nil, DefaultOptions(), nil)

	res, err := r.CheckEligibility(context.Background(), "old-age-pension",
		Profile{Age: 45, AnnualIncome: 150_000}, language.English)
	require.NoError(t, err)

	assert.False(t, res.Eligible)
	assert.Equal(t, []string{"Age above 60"}, res.Unmatched)
}

func TestCheckEligibilityFreeTextUsesGenerator(t *testing.T) {
	doc := pensionDoc()
	doc.Eligibility.EN = append(doc.Eligibility.EN, "Not receiving any other state pension")
	s := &stubSearcher{docs: map[string]*scheme.Document{"old-age-pension": doc}}
	gen := &stubGenerator{reply: "yes"}
	r := New(s, stubEmbedder{}, gen, DefaultOptions(), nil)

	res, err := r.CheckEligibility(context.Background(), "old-age-pension",
		Profile{Age: 65, AnnualIncome: 150_000}, language.English)
	require.NoError(t, err)

	assert.True(t, res.Eligible)
	require.Len(t, gen.calls, 1)
	assert.Contains(t, gen.calls[0], "Not receiving any other state pension")
}

func TestCheckEligibilityGeneratorFailureIsConservative(t *testing.T) {
	doc := pensionDoc()
	doc.Eligibility.EN = append(doc.Eligibility.EN, "Must hold a valid BPL card")
	s := &stubSearcher{docs: map[string]*scheme.Document{"old-age-pension": doc}}
	gen := &stubGenerator{err: assert.AnError}
	r := New(s, stubEmbedder{}, gen, DefaultOptions(), nil)

	res, err := r.CheckEligibility(context.Background(), "old-age-pension",
		Profile{Age: 65, AnnualIncome: 150_000}, language.English)
	require.NoError(t, err)

	assert.Contains(t, res.Unmatched, "Must hold a valid BPL card")
}

func TestCheckEligibilityUnknownScheme(t *testing.T) {
	s := &stubSearcher{docs: map[string]*scheme.Document{}}
	r := New(s, stubEmbedder{}, nil, DefaultOptions(), nil)

	_, err := r.CheckEligibility(context.Background(), "nope", Profile{}, language.English)
	assert.Equal(t, faults.KindNotFound, faults.KindOf(err))
}

func TestMatchRule(t *testing.T) {
	tests := []struct {
		criterion string
		profile   Profile
		verdict   bool
		ok        bool
	}{
		{"Annual income below 3 lakh", Profile{AnnualIncome: 250_000}, true, true},
		{"Annual income below 3 lakh", Profile{AnnualIncome: 400_000}, false, true},
		{"Annual income below 3 lakh", Profile{}, false, false},
		{"Age between 18 and 40", Profile{Age: 30}, true, true},
		{"Age between 18 and 40", Profile{Age: 50}, false, true},
		{"Age above 60", Profile{Age: 60}, true, true},
		{"Age below 18", Profile{Age: 20}, false, true},
		{"Landholding below 2 acres", Profile{LandAcres: 1.5}, true, true},
		{"Only women can apply", Profile{Gender: "female"}, true, true},
		{"Only women can apply", Profile{Gender: "male"}, false, true},
		{"Must be a farmer", Profile{Occupation: "farmer"}, true, true},
		{"Resident of Bihar", Profile{State: "Bihar"}, true, true},
		{"Resident of Bihar", Profile{State: "Kerala"}, false, true},
		{"Must hold a valid BPL card", Profile{}, false, false},
	}
	for _, tt := range tests {
		verdict, ok := matchRule(tt.criterion, tt.profile)
		assert.Equal(t, tt.ok, ok, "criterion %q", tt.criterion)
		if tt.ok {
			assert.Equal(t, tt.verdict, verdict, "criterion %q", tt.criterion)
		}
	}
}
