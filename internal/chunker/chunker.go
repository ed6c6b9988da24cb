// Package chunker splits extracted document text into overlapping chunks
// sized for embedding.
package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// defaultSeparators are tried in priority order so chunk boundaries land on
// semantic breaks where possible: paragraph, line, sentence end, clause, word.
var defaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", ", ", " "}

type Chunker struct {
	chunkSize  int
	overlap    int
	separators []string
}

func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 10
	}
	return &Chunker{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split breaks text into ordered, non-empty chunks near chunkSize runes,
// overlapping by the configured amount. Empty or whitespace-only input
// yields nil. When the separator-based pass produces nothing usable the
// splitter degrades to a fixed-size split without overlap rather than
// failing ingestion.
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	pieces := c.splitRecursive(text, c.separators)
	if len(pieces) == 0 {
		return c.fixedSplit(text)
	}
	return c.withOverlap(c.merge(pieces))
}

// splitRecursive cuts text into pieces no longer than chunkSize runes,
// trying separators in priority order. Whitespace-only pieces are dropped.
func (c *Chunker) splitRecursive(text string, separators []string) []string {
	if utf8.RuneCountInString(text) <= c.chunkSize {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}
	if len(separators) == 0 {
		return c.fixedSplit(text)
	}
	parts := strings.SplitAfter(text, separators[0])
	if len(parts) == 1 {
		return c.splitRecursive(text, separators[1:])
	}
	var pieces []string
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if utf8.RuneCountInString(part) > c.chunkSize {
			pieces = append(pieces, c.splitRecursive(part, separators[1:])...)
		} else {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

// merge greedily joins adjacent pieces while staying within chunkSize runes.
func (c *Chunker) merge(pieces []string) []string {
	var out []string
	var cur strings.Builder
	curLen := 0
	for _, piece := range pieces {
		pieceLen := utf8.RuneCountInString(piece)
		if curLen > 0 && curLen+pieceLen > c.chunkSize {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
		cur.WriteString(piece)
		curLen += pieceLen
	}
	if curLen > 0 {
		out = append(out, cur.String())
	}
	return out
}

// withOverlap prefixes every chunk after the first with the tail of the
// previous chunk so cross-boundary context survives retrieval.
func (c *Chunker) withOverlap(merged []string) []string {
	if c.overlap <= 0 || len(merged) < 2 {
		return merged
	}
	out := make([]string, len(merged))
	out[0] = merged[0]
	for i := 1; i < len(merged); i++ {
		out[i] = tailRunes(merged[i-1], c.overlap) + merged[i]
	}
	return out
}

// fixedSplit is the degraded path: plain fixed-size rune windows, no overlap.
func (c *Chunker) fixedSplit(text string) []string {
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += c.chunkSize {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		piece := string(runes[start:end])
		if strings.TrimSpace(piece) != "" {
			out = append(out, piece)
		}
	}
	return out
}

func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
