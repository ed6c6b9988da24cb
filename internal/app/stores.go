package app

import (
	"context"
	"errors"

	"ragserve/internal/model"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrDocumentNotFound = errors.New("document not found")
)

// DocumentStore is the persistence boundary for documents. The pipelines
// depend only on this interface, not on any particular engine.
type DocumentStore interface {
	InsertDocument(ctx context.Context, doc *model.Document) error
	FindDocumentsByWorkspace(ctx context.Context, workspaceID uint) ([]model.Document, error)
	FindDocumentsByChat(ctx context.Context, chatID uint) ([]model.Document, error)
	GetDocument(ctx context.Context, id uint) (*model.Document, error)
	DeleteDocument(ctx context.Context, id uint) error
}

// ChunkStore is the persistence boundary for document chunks.
type ChunkStore interface {
	InsertChunks(ctx context.Context, chunks []model.DocumentChunk) error
	FindChunksByDocumentIDs(ctx context.Context, documentIDs []uint) ([]model.DocumentChunk, error)
	DeleteChunksByDocument(ctx context.Context, documentID uint) error
	ChunkStats(ctx context.Context, documentIDs []uint) (chunkCount int64, totalTokens int64, err error)
}

// ChatStore supplies the chat metadata the access policy needs.
type ChatStore interface {
	GetChat(ctx context.Context, id uint) (*model.Chat, error)
}

// SettingsSource supplies the RAG feature flags, possibly through a cache.
type SettingsSource interface {
	GetSettings(ctx context.Context) (*model.RAGSettings, error)
}
