package app

import (
	"context"
	"log"
)

// AccessPolicy decides whether RAG activity should be skipped for a chat.
// Skipping is a normal signal, not an error: callers return neutral results.
type AccessPolicy interface {
	ShouldSkip(ctx context.Context, chatID *uint) bool
}

// SettingsPolicy gates RAG on the stored feature flags:
//   - the global kill switch disables everything;
//   - the workspace flag applies only to workspace-created chats;
//   - the chat flag applies only to chats not created from a workspace.
//
// Any error reading settings or chat metadata fails open: the feature is
// additive, so RAG stays enabled when state cannot be read.
type SettingsPolicy struct {
	settings SettingsSource
	chats    ChatStore
}

func NewSettingsPolicy(settings SettingsSource, chats ChatStore) *SettingsPolicy {
	return &SettingsPolicy{settings: settings, chats: chats}
}

func (p *SettingsPolicy) ShouldSkip(ctx context.Context, chatID *uint) bool {
	settings, err := p.settings.GetSettings(ctx)
	if err != nil || settings == nil {
		log.Printf("access policy: read settings failed, staying enabled: %v", err)
		return false
	}
	if !settings.Enabled {
		return true
	}

	workspaceCreated := false
	if chatID != nil {
		chat, err := p.chats.GetChat(ctx, *chatID)
		if err != nil {
			log.Printf("access policy: read chat %d failed, staying enabled: %v", *chatID, err)
			return false
		}
		if chat != nil {
			workspaceCreated = chat.WorkspaceCreated
		}
	}

	if workspaceCreated {
		return !settings.WorkspaceUploadsEnabled
	}
	return !settings.ChatUploadsEnabled
}
