package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ragserve/internal/model"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func (r *ChunkRepository) InsertChunks(ctx context.Context, chunks []model.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&chunks).Error; err != nil {
		return fmt.Errorf("insert chunks batch failed: %w", err)
	}
	return nil
}

// FindChunksByDocumentIDs returns all chunks for the given documents.
// Caller is responsible for scoping the document IDs.
func (r *ChunkRepository) FindChunksByDocumentIDs(ctx context.Context, documentIDs []uint) ([]model.DocumentChunk, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}
	var chunks []model.DocumentChunk
	if err := r.db.WithContext(ctx).
		Where("document_id IN ?", documentIDs).
		Order("document_id, chunk_index").
		Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("find chunks by document ids failed: %w", err)
	}
	return chunks, nil
}

func (r *ChunkRepository) DeleteChunksByDocument(ctx context.Context, documentID uint) error {
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&model.DocumentChunk{}).Error; err != nil {
		return fmt.Errorf("delete chunks by document failed: %w", err)
	}
	return nil
}

// ChunkStats aggregates chunk count and token total across the given documents.
func (r *ChunkRepository) ChunkStats(ctx context.Context, documentIDs []uint) (chunkCount int64, totalTokens int64, err error) {
	if len(documentIDs) == 0 {
		return 0, 0, nil
	}
	var row struct {
		ChunkCount  int64
		TotalTokens int64
	}
	if err := r.db.WithContext(ctx).
		Model(&model.DocumentChunk{}).
		Select("COUNT(*) AS chunk_count, COALESCE(SUM(token_count), 0) AS total_tokens").
		Where("document_id IN ?", documentIDs).
		Scan(&row).Error; err != nil {
		return 0, 0, fmt.Errorf("aggregate chunk stats failed: %w", err)
	}
	return row.ChunkCount, row.TotalTokens, nil
}
