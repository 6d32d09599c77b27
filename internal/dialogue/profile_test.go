package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/janseva/janseva/internal/retrieval"
)

func TestAbsorbProfile(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      retrieval.Profile
	}{
		{
			"hinglish age gender income",
			"main 65 saal ki vidhwa hoon, meri income 50000 hai",
			retrieval.Profile{Age: 65, AnnualIncome: 50000, Gender: "female"},
		},
		{
			"english age",
			"I am 70 years old and need help",
			retrieval.Profile{Age: 70},
		},
		{
			"income in lakh",
			"meri salary 2 lakh hai",
			retrieval.Profile{AnnualIncome: 200_000},
		},
		{
			"hindi income",
			"मेरी आय 1.5 लाख है",
			retrieval.Profile{AnnualIncome: 150_000},
		},
		{
			"occupation and state",
			"main kisan hoon, Maharashtra se",
			retrieval.Profile{Occupation: "farmer", State: "Maharashtra"},
		},
		{
			"land holding",
			"mere paas 2.5 acre zameen hai",
			retrieval.Profile{LandAcres: 2.5},
		},
		{
			"male gender",
			"main 40 saal ka purush hoon",
			retrieval.Profile{Age: 40, Gender: "male"},
		},
		{
			"no personal facts",
			"pension yojana ke baare mein batao",
			retrieval.Profile{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p retrieval.Profile
			absorbProfile(&p, tt.utterance)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestAbsorbProfileLatestStatementWins(t *testing.T) {
	var p retrieval.Profile
	absorbProfile(&p, "meri income 50000 hai")
	absorbProfile(&p, "nahi, meri income 2 lakh hai")

	assert.Equal(t, int64(200_000), p.AnnualIncome)
}

func TestAbsorbProfileKeepsKnownFacts(t *testing.T) {
	p := retrieval.Profile{Age: 65, Gender: "female"}
	absorbProfile(&p, "Maharashtra se hoon")

	assert.Equal(t, 65, p.Age)
	assert.Equal(t, "female", p.Gender)
	assert.Equal(t, "Maharashtra", p.State)
}
