package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ragserve/internal/model"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSettings returns the singleton settings row, or the enabled defaults
// when no row has been written yet.
func (r *SettingsRepository) GetSettings(ctx context.Context) (*model.RAGSettings, error) {
	var settings model.RAGSettings
	if err := r.db.WithContext(ctx).Order("id").First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.DefaultRAGSettings(), nil
		}
		return nil, fmt.Errorf("get rag settings failed: %w", err)
	}
	return &settings, nil
}

func (r *SettingsRepository) SaveSettings(ctx context.Context, settings *model.RAGSettings) error {
	if err := r.db.WithContext(ctx).Save(settings).Error; err != nil {
		return fmt.Errorf("save rag settings failed: %w", err)
	}
	return nil
}
