package scheme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChunksSkipsEmptySections(t *testing.T) {
	doc := &Document{
		SchemeID: "s1",
		Name:     Bilingual{EN: "Scheme One"},
	}

	chunks := BuildChunks(doc)

	for _, c := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(c.Content))
	}
	// Name only, both languages fall back to the English text.
	assert.Len(t, chunks, 2)
}

func TestBuildChunksPrefixesSchemeName(t *testing.T) {
	doc := testDocument()
	doc.Version = 1

	chunks := BuildChunks(doc)
	require.NotEmpty(t, chunks)

	for _, c := range chunks {
		if c.Section == SectionName {
			continue
		}
		assert.Contains(t, c.Content, doc.Name.In(c.Language),
			"section %s/%s should carry the scheme name", c.Section, c.Language)
	}
}

func TestSplitBoundedRespectsLimit(t *testing.T) {
	sentence := "This is one full sentence about the benefit amount."
	long := strings.Repeat(sentence+" ", 40)

	parts := splitBounded(long, MaxChunkRunes)

	require.Greater(t, len(parts), 1)
	for _, p := range parts {
		assert.LessOrEqual(t, len([]rune(p)), MaxChunkRunes)
		assert.True(t, strings.HasSuffix(p, "."), "parts should end at sentence boundaries")
	}
}

func TestSplitBoundedShortTextUnchanged(t *testing.T) {
	parts := splitBounded("short text", MaxChunkRunes)
	assert.Equal(t, []string{"short text"}, parts)
}

func TestSplitSentencesDanda(t *testing.T) {
	got := splitSentences("यह पहला वाक्य है। यह दूसरा वाक्य है।")
	require.Len(t, got, 2)
	assert.Equal(t, "यह पहला वाक्य है।", got[0])
}
