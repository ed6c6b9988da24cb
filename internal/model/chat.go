package model

import "time"

// Chat is the metadata the RAG subsystem needs about a chat: which workspace
// it belongs to (if any) and whether it was created from a workspace, which
// the access policy uses to pick the right disable flag.
type Chat struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	WorkspaceID      *uint     `gorm:"index" json:"workspace_id"`
	WorkspaceCreated bool      `gorm:"default:false" json:"workspace_created"`
	Title            string    `gorm:"size:256" json:"title"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
