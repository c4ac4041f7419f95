package cache

import (
	"casepilot/internal/model"
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// resumeWindow matches the "resume within 30 days" promise in the emails
const resumeWindow = 30 * 24 * time.Hour

// DraftCache is a read-through cache for resume-token lookups
type DraftCache interface {
	SetByToken(ctx context.Context, draft *model.Draft) error
	GetByToken(ctx context.Context, token string) (*model.Draft, error)
	DeleteToken(ctx context.Context, token string) error
}

type draftCache struct {
	client *redis.Client
}

// NewDraftCache creates a new draft cache
func NewDraftCache(client *redis.Client) DraftCache {
	return &draftCache{
		client: client,
	}
}

func (c *draftCache) SetByToken(ctx context.Context, draft *model.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "draft:token:"+draft.ResumeToken, data, resumeWindow).Err()
}

func (c *draftCache) GetByToken(ctx context.Context, token string) (*model.Draft, error) {
	data, err := c.client.Get(ctx, "draft:token:"+token).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var draft model.Draft
	if err := json.Unmarshal([]byte(data), &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (c *draftCache) DeleteToken(ctx context.Context, token string) error {
	return c.client.Del(ctx, "draft:token:"+token).Err()
}
