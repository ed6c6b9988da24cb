package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleText(sentences int) string {
	var b strings.Builder
	for i := 0; i < sentences; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog near the river. ")
	}
	return strings.TrimSpace(b.String())
}

func TestSplitEmptyInput(t *testing.T) {
	c := New(500, 50)
	assert.Nil(t, c.Split(""))
	assert.Nil(t, c.Split("   \n\t  "))
}

func TestSplitDeterministic(t *testing.T) {
	c := New(500, 50)
	text := sampleText(40)
	first := c.Split(text)
	second := c.Split(text)
	assert.Equal(t, first, second)
}

func TestSplitNoEmptyChunks(t *testing.T) {
	c := New(100, 10)
	for _, text := range []string{sampleText(20), "one\n\n\n\ntwo", strings.Repeat("x", 350)} {
		for _, chunk := range c.Split(text) {
			assert.NotEmpty(t, strings.TrimSpace(chunk))
		}
	}
}

func TestSplitRespectsChunkSize(t *testing.T) {
	c := New(500, 50)
	for _, chunk := range c.Split(sampleText(100)) {
		// A chunk may exceed the target by at most the overlap prefix.
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 500+50)
	}
}

func TestSplitCoverageWithoutOverlap(t *testing.T) {
	c := New(500, 0)
	text := sampleText(60)
	chunks := c.Split(text)
	require.NotEmpty(t, chunks)

	joined := strings.Join(chunks, "")
	assert.Equal(t, stripWhitespace(text), stripWhitespace(joined))
}

func TestSplitOverlapIsTailOfPreviousChunk(t *testing.T) {
	overlap := 50
	c := New(500, overlap)
	chunks := c.Split(sampleText(60))
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		require.GreaterOrEqual(t, len(prev), overlap)
		tail := string(prev[len(prev)-overlap:])
		assert.True(t, strings.HasPrefix(chunks[i], tail),
			"chunk %d should start with the last %d runes of chunk %d", i, overlap, i-1)
	}
}

func TestSplitTwelveHundredCharsYieldsThreeChunks(t *testing.T) {
	// 20 sentences of 60 characters = 1200 characters.
	c := New(500, 50)
	text := sampleText(20)
	require.Equal(t, 1199, utf8.RuneCountInString(text)) // trailing space trimmed

	chunks := c.Split(text)
	assert.Len(t, chunks, 3)
}

func TestSplitFallbackForUnbreakableText(t *testing.T) {
	c := New(100, 10)
	text := strings.Repeat("a", 250)
	chunks := c.Split(text)

	require.Len(t, chunks, 3)
	// Degraded path: fixed windows, no overlap.
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitShortInputSingleChunk(t *testing.T) {
	c := New(500, 50)
	chunks := c.Split("just a short note")
	require.Len(t, chunks, 1)
	assert.Equal(t, "just a short note", chunks[0])
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
