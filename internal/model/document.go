package model

import "time"

// Document scope sources, as reported in retrieval results.
const (
	SourceWorkspace = "workspace"
	SourceChat      = "chat"
)

// Document is one ingested source document. Exactly one of ChatID or
// WorkspaceID is normally set; both may be nil for legacy tenant-only rows.
// A workspace document is visible to every chat linked to that workspace.
type Document struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ChatID      *uint     `gorm:"index" json:"chat_id"`
	WorkspaceID *uint     `gorm:"index" json:"workspace_id"`
	TenantID    string    `gorm:"size:64;index" json:"tenant_id,omitempty"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Filename    string    `gorm:"size:256;not null" json:"filename"`
	MimeType    string    `gorm:"size:128" json:"mime_type,omitempty"`
	FileSize    int64     `gorm:"default:0" json:"file_size"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Source returns "workspace" when the document is workspace-scoped, else "chat".
func (d *Document) Source() string {
	if d.WorkspaceID != nil {
		return SourceWorkspace
	}
	return SourceChat
}
