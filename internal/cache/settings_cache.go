package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"ragserve/internal/model"
)

const settingsKey = "rag:settings"

// SettingsRepository is the durable source behind the cache.
type SettingsRepository interface {
	GetSettings(ctx context.Context) (*model.RAGSettings, error)
}

// SettingsCache is a read-through Redis cache for the RAG feature flags.
// Cache problems fall back to the repository; only repository errors
// propagate, so the access policy can fail open on them.
type SettingsCache struct {
	client *redisv9.Client
	repo   SettingsRepository
	ttl    time.Duration
}

func NewSettingsCache(client *redisv9.Client, repo SettingsRepository, ttl time.Duration) *SettingsCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &SettingsCache{client: client, repo: repo, ttl: ttl}
}

func (c *SettingsCache) GetSettings(ctx context.Context) (*model.RAGSettings, error) {
	raw, err := c.client.Get(ctx, settingsKey).Result()
	if err == nil {
		var settings model.RAGSettings
		if jsonErr := json.Unmarshal([]byte(raw), &settings); jsonErr == nil {
			return &settings, nil
		}
		log.Printf("settings cache: discarding unreadable cached payload")
	} else if err != redisv9.Nil {
		log.Printf("settings cache: redis get failed, reading from store: %v", err)
	}

	settings, err := c.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(settings); err == nil {
		if err := c.client.Set(ctx, settingsKey, payload, c.ttl).Err(); err != nil {
			log.Printf("settings cache: redis set failed: %v", err)
		}
	}
	return settings, nil
}

// Invalidate drops the cached flags; call after saving new settings.
func (c *SettingsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, settingsKey).Err(); err != nil {
		return fmt.Errorf("redis delete settings failed: %w", err)
	}
	return nil
}
