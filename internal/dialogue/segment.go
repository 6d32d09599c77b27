package dialogue

import "strings"

// sentenceEnders terminate a sentence in either script.
var sentenceEnders = map[rune]bool{'.': true, '!': true, '?': true, '।': true}

// segment splits text into spoken-length pieces at sentence breaks for the
// synthesis collaborator. Text at or under the threshold returns nil; the
// full text is always in Response.Text.
func segment(text string, maxRunes int) []string {
	if maxRunes <= 0 || len([]rune(text)) <= maxRunes {
		return nil
	}

	var segments []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			segments = append(segments, s)
		}
		cur.Reset()
		curLen = 0
	}

	var sentence strings.Builder
	sentLen := 0
	emit := func() {
		if sentLen == 0 {
			return
		}
		if curLen > 0 && curLen+sentLen+1 > maxRunes {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(strings.TrimSpace(sentence.String()))
		curLen += sentLen
		sentence.Reset()
		sentLen = 0
	}

	for _, r := range text {
		sentence.WriteRune(r)
		sentLen++
		if sentenceEnders[r] {
			emit()
		}
	}
	emit()
	flush()
	return segments
}
