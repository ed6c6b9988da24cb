package model

import "time"

// RAGSettings is the singleton feature-flag row consulted by the access
// policy before any ingestion or retrieval.
type RAGSettings struct {
	ID                      uint      `gorm:"primaryKey" json:"id"`
	Enabled                 bool      `gorm:"default:true" json:"enabled"`
	WorkspaceUploadsEnabled bool      `gorm:"default:true" json:"workspace_uploads_enabled"`
	ChatUploadsEnabled      bool      `gorm:"default:true" json:"chat_uploads_enabled"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// DefaultRAGSettings returns the fail-open defaults: everything enabled.
func DefaultRAGSettings() *RAGSettings {
	return &RAGSettings{
		Enabled:                 true,
		WorkspaceUploadsEnabled: true,
		ChatUploadsEnabled:      true,
	}
}
