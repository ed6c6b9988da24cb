package embedding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeVocab(t *testing.T, tokens ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocab.txt")
	content := ""
	for _, token := range tokens {
		content += token + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testTokenizer(t *testing.T) *wordpieceTokenizer {
	t.Helper()
	path := writeVocab(t,
		"[PAD]", "[UNK]", "[CLS]", "[SEP]",
		"hello", "world", "play", "##ing", ",", ".",
	)
	tok, err := newWordpieceTokenizer(path, 16)
	require.NoError(t, err)
	return tok
}

func TestTokenizerSpecialTokenIDs(t *testing.T) {
	tok := testTokenizer(t)
	assert.Equal(t, int64(0), tok.padID)
	assert.Equal(t, int64(1), tok.unkID)
	assert.Equal(t, int64(2), tok.clsID)
	assert.Equal(t, int64(3), tok.sepID)
}

func TestTokenizerMissingSpecialToken(t *testing.T) {
	path := writeVocab(t, "hello", "world")
	_, err := newWordpieceTokenizer(path, 16)
	require.Error(t, err)
}

func TestTokenizeWrapsWithClsAndSep(t *testing.T) {
	tok := testTokenizer(t)
	ids := tok.tokenize("hello world")
	assert.Equal(t, []int64{tok.clsID, 4, 5, tok.sepID}, ids)
}

func TestTokenizeWordpieceContinuation(t *testing.T) {
	tok := testTokenizer(t)
	ids := tok.tokenize("playing")
	assert.Equal(t, []int64{tok.clsID, 6, 7, tok.sepID}, ids)
}

func TestTokenizeUnknownWord(t *testing.T) {
	tok := testTokenizer(t)
	ids := tok.tokenize("zzzzz")
	assert.Equal(t, []int64{tok.clsID, tok.unkID, tok.sepID}, ids)
}

func TestTokenizeLowercasesAndSplitsPunctuation(t *testing.T) {
	tok := testTokenizer(t)
	ids := tok.tokenize("Hello, World.")
	assert.Equal(t, []int64{tok.clsID, 4, 8, 5, 9, tok.sepID}, ids)
}

func TestTokenizeTruncatesToMaxLen(t *testing.T) {
	path := writeVocab(t, "[PAD]", "[UNK]", "[CLS]", "[SEP]", "hello")
	tok, err := newWordpieceTokenizer(path, 6)
	require.NoError(t, err)

	ids := tok.tokenize("hello hello hello hello hello hello hello")
	assert.Len(t, ids, 6)
	assert.Equal(t, tok.clsID, ids[0])
	assert.Equal(t, tok.sepID, ids[len(ids)-1])
}
