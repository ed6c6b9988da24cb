package embedding

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// maxWordpieceChars guards against pathological inputs; longer words map to [UNK].
const maxWordpieceChars = 100

// wordpieceTokenizer implements BERT-style lowercased wordpiece tokenization
// against a vocab.txt file (one token per line, line number = token id).
type wordpieceTokenizer struct {
	vocab  map[string]int64
	unkID  int64
	clsID  int64
	sepID  int64
	padID  int64
	maxLen int
}

func newWordpieceTokenizer(vocabPath string, maxLen int) (*wordpieceTokenizer, error) {
	vocab, err := loadVocab(vocabPath)
	if err != nil {
		return nil, err
	}
	t := &wordpieceTokenizer{vocab: vocab, maxLen: maxLen}
	for _, special := range []struct {
		token string
		id    *int64
	}{
		{"[UNK]", &t.unkID},
		{"[CLS]", &t.clsID},
		{"[SEP]", &t.sepID},
		{"[PAD]", &t.padID},
	} {
		id, ok := vocab[special.token]
		if !ok {
			return nil, fmt.Errorf("vocabulary is missing %s", special.token)
		}
		*special.id = id
	}
	return t, nil
}

func loadVocab(path string) (map[string]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vocab := make(map[string]int64)
	sc := bufio.NewScanner(f)
	var id int64
	for sc.Scan() {
		vocab[strings.TrimSpace(sc.Text())] = id
		id++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(vocab) == 0 {
		return nil, fmt.Errorf("vocabulary %s is empty", path)
	}
	return vocab, nil
}

// tokenize produces [CLS] wordpieces... [SEP], truncated to maxLen.
func (t *wordpieceTokenizer) tokenize(text string) []int64 {
	ids := []int64{t.clsID}
	for _, word := range basicTokenize(text) {
		ids = append(ids, t.wordpiece(word)...)
		if len(ids) >= t.maxLen-1 {
			ids = ids[:t.maxLen-1]
			break
		}
	}
	return append(ids, t.sepID)
}

// basicTokenize lowercases and splits on whitespace, treating punctuation
// as standalone tokens.
func basicTokenize(text string) []string {
	var tokens []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, string(current))
			current = current[:0]
		}
	}
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			current = append(current, r)
		}
	}
	flush()
	return tokens
}

// wordpiece greedily matches the longest vocabulary prefix, with the "##"
// continuation convention. Unmatchable words become a single [UNK].
func (t *wordpieceTokenizer) wordpiece(word string) []int64 {
	runes := []rune(word)
	if len(runes) > maxWordpieceChars {
		return []int64{t.unkID}
	}
	var ids []int64
	start := 0
	for start < len(runes) {
		end := len(runes)
		matched := int64(-1)
		for end > start {
			sub := string(runes[start:end])
			if start > 0 {
				sub = "##" + sub
			}
			if id, ok := t.vocab[sub]; ok {
				matched = id
				break
			}
			end--
		}
		if matched < 0 {
			return []int64{t.unkID}
		}
		ids = append(ids, matched)
		start = end
	}
	return ids
}
