package app

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"ragserve/internal/chunker"
	"ragserve/internal/embedding"
	"ragserve/internal/model"
)

// IngestService orchestrates one document's ingestion: persist the document,
// split its text, embed the chunks as a batch, persist the chunks.
type IngestService struct {
	docs     DocumentStore
	chunks   ChunkStore
	embedder embedding.Embedder
	splitter *chunker.Chunker
	policy   AccessPolicy
}

func NewIngestService(
	docs DocumentStore,
	chunks ChunkStore,
	embedder embedding.Embedder,
	splitter *chunker.Chunker,
	policy AccessPolicy,
) *IngestService {
	return &IngestService{
		docs:     docs,
		chunks:   chunks,
		embedder: embedder,
		splitter: splitter,
		policy:   policy,
	}
}

// IngestInput carries everything the surrounding system knows about one
// upload. FilePath may be empty when no raw file is retained (URL ingests,
// chunk-only storage).
type IngestInput struct {
	ChatID      *uint  `json:"chat_id"`
	WorkspaceID *uint  `json:"workspace_id"`
	TenantID    string `json:"tenant_id"`
	Title       string `json:"title"`
	Filename    string `json:"filename"`
	FilePath    string `json:"file_path"`
	Text        string `json:"text"`
	MimeType    string `json:"mime_type"`
	FileSize    int64  `json:"file_size"`
}

type IngestResult struct {
	DocumentID uint `json:"document_id"`
	ChunkCount int  `json:"chunk_count"`
	Skipped    bool `json:"skipped"`
}

// Ingest stores the document and its embedded chunks, returning the new
// document ID. The document row is committed before embedding starts, so a
// failed embedding step leaves a document with zero chunks; that partial
// state is accepted and the error is surfaced to the caller.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: document text is empty", ErrInvalidInput)
	}

	if s.policy.ShouldSkip(ctx, input.ChatID) {
		return &IngestResult{Skipped: true}, nil
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = strings.TrimSpace(input.Filename)
	}
	if title == "" {
		title = "Untitled"
	}
	fileSize := input.FileSize
	if fileSize <= 0 {
		// Chunk-only storage keeps no raw file; approximate from the text.
		fileSize = int64(len(text))
	}

	doc := &model.Document{
		ChatID:      input.ChatID,
		WorkspaceID: input.WorkspaceID,
		TenantID:    input.TenantID,
		Title:       title,
		Filename:    input.Filename,
		MimeType:    input.MimeType,
		FileSize:    fileSize,
	}
	if err := s.docs.InsertDocument(ctx, doc); err != nil {
		return nil, err
	}

	pieces := s.splitter.Split(text)
	if len(pieces) == 0 {
		return nil, fmt.Errorf("%w: document %d produced no chunks", ErrInvalidInput, doc.ID)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		return nil, fmt.Errorf("embed chunks for document %d failed: %w", doc.ID, err)
	}
	if len(vectors) != len(pieces) {
		return nil, fmt.Errorf("embedding count mismatch for document %d: %d chunks, %d vectors",
			doc.ID, len(pieces), len(vectors))
	}

	rows := make([]model.DocumentChunk, len(pieces))
	for i := range pieces {
		rows[i] = model.DocumentChunk{
			DocumentID: doc.ID,
			ChunkIndex: i,
			Content:    pieces[i],
			// Character length, not a true token count.
			TokenCount: utf8.RuneCountInString(pieces[i]),
		}
		if err := rows[i].SetEmbedding(vectors[i]); err != nil {
			return nil, err
		}
	}
	if err := s.chunks.InsertChunks(ctx, rows); err != nil {
		return nil, fmt.Errorf("persist chunks for document %d failed: %w", doc.ID, err)
	}

	return &IngestResult{DocumentID: doc.ID, ChunkCount: len(rows)}, nil
}

// DeleteDocument removes a document and all its chunks. Chunks go first;
// the cascade is manual, not database-enforced.
func (s *IngestService) DeleteDocument(ctx context.Context, documentID uint) error {
	if documentID == 0 {
		return ErrInvalidInput
	}
	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	if err := s.chunks.DeleteChunksByDocument(ctx, doc.ID); err != nil {
		return err
	}
	return s.docs.DeleteDocument(ctx, doc.ID)
}
