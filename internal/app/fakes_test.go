package app

import (
	"context"
	"errors"

	"ragserve/internal/model"
)

func uintPtr(v uint) *uint { return &v }

type fakeDocStore struct {
	nextID    uint
	docs      []model.Document
	insertErr error
}

func (f *fakeDocStore) InsertDocument(_ context.Context, doc *model.Document) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextID++
	doc.ID = f.nextID
	f.docs = append(f.docs, *doc)
	return nil
}

func (f *fakeDocStore) FindDocumentsByWorkspace(_ context.Context, workspaceID uint) ([]model.Document, error) {
	var out []model.Document
	for _, d := range f.docs {
		if d.WorkspaceID != nil && *d.WorkspaceID == workspaceID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocStore) FindDocumentsByChat(_ context.Context, chatID uint) ([]model.Document, error) {
	var out []model.Document
	for _, d := range f.docs {
		if d.ChatID != nil && *d.ChatID == chatID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocStore) GetDocument(_ context.Context, id uint) (*model.Document, error) {
	for i := range f.docs {
		if f.docs[i].ID == id {
			doc := f.docs[i]
			return &doc, nil
		}
	}
	return nil, nil
}

func (f *fakeDocStore) DeleteDocument(_ context.Context, id uint) error {
	kept := f.docs[:0]
	for _, d := range f.docs {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	f.docs = kept
	return nil
}

type fakeChunkStore struct {
	nextID      uint
	chunks      []model.DocumentChunk
	insertErr   error
	deletedDocs []uint
}

func (f *fakeChunkStore) InsertChunks(_ context.Context, chunks []model.DocumentChunk) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	for i := range chunks {
		f.nextID++
		chunks[i].ID = f.nextID
		f.chunks = append(f.chunks, chunks[i])
	}
	return nil
}

func (f *fakeChunkStore) FindChunksByDocumentIDs(_ context.Context, documentIDs []uint) ([]model.DocumentChunk, error) {
	wanted := make(map[uint]struct{}, len(documentIDs))
	for _, id := range documentIDs {
		wanted[id] = struct{}{}
	}
	var out []model.DocumentChunk
	for _, c := range f.chunks {
		if _, ok := wanted[c.DocumentID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChunkStore) DeleteChunksByDocument(_ context.Context, documentID uint) error {
	f.deletedDocs = append(f.deletedDocs, documentID)
	kept := f.chunks[:0]
	for _, c := range f.chunks {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	f.chunks = kept
	return nil
}

func (f *fakeChunkStore) ChunkStats(_ context.Context, documentIDs []uint) (int64, int64, error) {
	wanted := make(map[uint]struct{}, len(documentIDs))
	for _, id := range documentIDs {
		wanted[id] = struct{}{}
	}
	var count, tokens int64
	for _, c := range f.chunks {
		if _, ok := wanted[c.DocumentID]; ok {
			count++
			tokens += int64(c.TokenCount)
		}
	}
	return count, tokens, nil
}

// fakeEmbedder returns deterministic unit vectors; individual texts can be
// pinned to specific vectors to control similarity scores.
type fakeEmbedder struct {
	dims       int
	vectors    map[string][]float32
	embedCalls int
	batchCalls int
	batchErr   error
}

func newFakeEmbedder(dims int) *fakeEmbedder {
	return &fakeEmbedder{dims: dims, vectors: make(map[string][]float32)}
}

func (f *fakeEmbedder) vectorFor(text string) []float32 {
	if v, ok := f.vectors[text]; ok {
		return v
	}
	v := make([]float32, f.dims)
	v[0] = 1
	return v
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.embedCalls++
	if text == "" {
		return nil, errors.New("empty text")
	}
	return f.vectorFor(text), nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.batchCalls++
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vectorFor(t)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return f.dims }

type stubPolicy struct {
	skip bool
}

func (p *stubPolicy) ShouldSkip(context.Context, *uint) bool { return p.skip }

type stubSettings struct {
	settings *model.RAGSettings
	err      error
}

func (s *stubSettings) GetSettings(context.Context) (*model.RAGSettings, error) {
	return s.settings, s.err
}

type stubChats struct {
	chats map[uint]*model.Chat
	err   error
}

func (s *stubChats) GetChat(_ context.Context, id uint) (*model.Chat, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.chats[id], nil
}
