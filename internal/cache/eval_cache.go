package cache

import (
	"casepilot/internal/model"
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// EvalCache memoizes AI-enhanced evaluations so a debounce storm on the same
// answer does not re-bill the AI API
type EvalCache interface {
	Set(ctx context.Context, key string, eval *model.Evaluation) error
	Get(ctx context.Context, key string) (*model.Evaluation, error)
}

type evalCache struct {
	client *redis.Client
}

// NewEvalCache creates a new evaluation cache
func NewEvalCache(client *redis.Client) EvalCache {
	return &evalCache{
		client: client,
	}
}

func (c *evalCache) Set(ctx context.Context, key string, eval *model.Evaluation) error {
	data, err := json.Marshal(eval)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "eval:"+key, data, 10*time.Minute).Err()
}

func (c *evalCache) Get(ctx context.Context, key string) (*model.Evaluation, error) {
	data, err := c.client.Get(ctx, "eval:"+key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var eval model.Evaluation
	if err := json.Unmarshal([]byte(data), &eval); err != nil {
		return nil, err
	}
	return &eval, nil
}
