package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DocumentChunk stores one text chunk and its embedding for retrieval.
// Embedding is a JSON array of float32 in a text column for portability;
// nil means the chunk contributes nothing to retrieval.
type DocumentChunk struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"not null;index" json:"document_id"`
	ChunkIndex int       `gorm:"not null" json:"chunk_index"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Embedding  *string   `gorm:"type:text" json:"-"`
	TokenCount int       `gorm:"default:0" json:"token_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// EmbeddingVector parses the stored embedding. Returns an error when the
// column is nil, empty, or not valid JSON; callers decide whether to skip.
func (c *DocumentChunk) EmbeddingVector() ([]float32, error) {
	if c.Embedding == nil || *c.Embedding == "" {
		return nil, fmt.Errorf("chunk %d has no embedding", c.ID)
	}
	var v []float32
	if err := json.Unmarshal([]byte(*c.Embedding), &v); err != nil {
		return nil, fmt.Errorf("parse embedding for chunk %d failed: %w", c.ID, err)
	}
	return v, nil
}

// SetEmbedding stores the vector as JSON.
func (c *DocumentChunk) SetEmbedding(vec []float32) error {
	b, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("marshal embedding failed: %w", err)
	}
	s := string(b)
	c.Embedding = &s
	return nil
}
