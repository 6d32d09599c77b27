package scheme

import (
	"strings"

	"github.com/google/uuid"

	"github.com/janseva/janseva/internal/language"
)

// MaxChunkRunes bounds chunk length. Sections longer than this are split at
// sentence boundaries; a single oversized sentence becomes its own chunk
// rather than being cut mid-sentence.
const MaxChunkRunes = 600

// BuildChunks derives the retrieval chunks for one document version, per
// language and section. Chunk content is prefixed with the scheme name so a
// benefits chunk still matches queries naming the scheme.
func BuildChunks(doc *Document) []Chunk {
	var chunks []Chunk
	for _, lang := range []language.Language{language.English, language.Hindi} {
		name := doc.Name.In(lang)

		sections := []struct {
			kind Section
			text string
		}{
			{SectionName, name},
			{SectionDescription, doc.Description.In(lang)},
			{SectionEligibility, strings.Join(doc.Eligibility.In(lang), "\n")},
			{SectionBenefits, strings.Join(doc.Benefits.In(lang), "\n")},
			{SectionProcess, doc.Process.In(lang)},
		}

		for _, sec := range sections {
			text := strings.TrimSpace(sec.text)
			if text == "" {
				continue
			}
			if sec.kind != SectionName && name != "" {
				text = name + ": " + text
			}
			for _, part := range splitBounded(text, MaxChunkRunes) {
				chunks = append(chunks, Chunk{
					ID:         uuid.New(),
					SchemeID:   doc.SchemeID,
					Version:    doc.Version,
					Section:    sec.kind,
					Language:   lang,
					Category:   doc.Category,
					Content:    part,
					VerifiedAt: doc.VerifiedAt,
				})
			}
		}
	}
	return chunks
}

// sentenceEnders terminate a sentence in either script. The danda (।) is the
// Devanagari full stop.
var sentenceEnders = map[rune]bool{'.': true, '!': true, '?': true, '।': true, '\n': true}

// splitBounded splits text into pieces of at most maxRunes, cutting only at
// sentence boundaries.
func splitBounded(text string, maxRunes int) []string {
	if len([]rune(text)) <= maxRunes {
		return []string{text}
	}

	sentences := splitSentences(text)

	var parts []string
	var cur strings.Builder
	curLen := 0
	for _, s := range sentences {
		sLen := len([]rune(s))
		if curLen > 0 && curLen+sLen+1 > maxRunes {
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(s)
		curLen += sLen
	}
	if curLen > 0 {
		parts = append(parts, strings.TrimSpace(cur.String()))
	}
	return parts
}

// splitSentences splits text at sentence enders, keeping the ender with its
// sentence. Never returns empty strings.
func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder
	for _, r := range text {
		cur.WriteRune(r)
		if sentenceEnders[r] {
			if s := strings.TrimSpace(cur.String()); s != "" {
				sentences = append(sentences, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
