package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ragserve/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) InsertDocument(ctx context.Context, doc *model.Document) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("insert document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) FindDocumentsByWorkspace(ctx context.Context, workspaceID uint) ([]model.Document, error) {
	var list []model.Document
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("find documents by workspace failed: %w", err)
	}
	return list, nil
}

func (r *DocumentRepository) FindDocumentsByChat(ctx context.Context, chatID uint) ([]model.Document, error) {
	var list []model.Document
	if err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("find documents by chat failed: %w", err)
	}
	return list, nil
}

// GetDocument returns nil without error when the document does not exist.
func (r *DocumentRepository) GetDocument(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

// DeleteDocument removes the document row only. Chunks are deleted separately
// by the caller before this; the cascade is not database-enforced.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Document{}).Error; err != nil {
		return fmt.Errorf("delete document failed: %w", err)
	}
	return nil
}
