// Package language classifies utterances as Hindi, English or mixed.
//
// Detection is deterministic: it counts Devanagari versus Latin letters and
// probes for romanized-Hindi function words, so the same text always yields
// the same result. It never fails; ambiguous or too-short input classifies
// as mixed with low confidence, and the orchestrator falls back to the
// session's stored language preference when confidence is below its
// threshold.
package language

import (
	"strings"
	"unicode"
)

// Language is a detected utterance language.
type Language string

const (
	// Hindi covers Devanagari-script and romanized Hindi utterances.
	Hindi Language = "hi"
	// English covers Latin-script English utterances.
	English Language = "en"
	// Mixed covers code-switched or undecidable utterances.
	Mixed Language = "mixed"
)

// Valid reports whether l is one of the three supported values.
func (l Language) Valid() bool {
	return l == Hindi || l == English || l == Mixed
}

// Result is a language classification with a confidence score in [0, 1].
type Result struct {
	Language   Language
	Confidence float64
}

// minLetters is the minimum letter count needed for a confident call.
const minLetters = 4

// dominanceRatio is the script share above which a single language wins.
const dominanceRatio = 0.75

// romanHindiWords are high-frequency Hindi function words in Latin script.
// A Latin-script utterance dominated by these is romanized Hindi, not English.
var romanHindiWords = map[string]bool{
	"kya": true, "hai": true, "hain": true, "nahi": true, "nahin": true,
	"mera": true, "meri": true, "mujhe": true, "aap": true, "kaise": true,
	"kyon": true, "kaun": true, "kahan": true, "chahiye": true, "karna": true,
	"hoga": true, "tha": true, "thi": true, "aur": true, "bhi": true,
	"yojana": true, "sarkari": true, "paisa": true, "gaon": true,
}

// Detect classifies text. It never returns an error: empty, too-short or
// balanced input yields Mixed with low confidence.
func Detect(text string) Result {
	var devanagari, latin int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Devanagari, r):
			devanagari++
		case unicode.IsLetter(r) && r < 0x250: // Latin incl. extended
			latin++
		}
	}

	total := devanagari + latin
	if total < minLetters {
		return Result{Language: Mixed, Confidence: 0.3}
	}

	devRatio := float64(devanagari) / float64(total)

	switch {
	case devRatio >= dominanceRatio:
		return Result{Language: Hindi, Confidence: devRatio}
	case devRatio <= 1-dominanceRatio:
		// Latin-dominant: distinguish English from romanized Hindi.
		if share := romanHindiShare(text); share >= 0.4 {
			return Result{Language: Hindi, Confidence: 0.5 + share/2}
		}
		return Result{Language: English, Confidence: 1 - devRatio}
	default:
		// Genuinely code-switched: the more balanced the scripts, the more
		// confident the mixed call.
		return Result{Language: Mixed, Confidence: 1 - 2*abs(devRatio-0.5)}
	}
}

// romanHindiShare returns the fraction of whitespace-separated tokens that
// are known romanized-Hindi function words.
func romanHindiShare(text string) float64 {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return 0
	}
	var hits int
	for _, f := range fields {
		f = strings.Trim(f, ".,!?।") // strip punctuation incl. danda
		if romanHindiWords[f] {
			hits++
		}
	}
	return float64(hits) / float64(len(fields))
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
