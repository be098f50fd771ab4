package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/customadesign/ACFL/internal/models"
)

const coachPoolKey = "coachpool:v1"

// CoachPoolCache keeps the full available-coach pool in Redis for a short
// TTL so repeated match requests do not hit Postgres every time. Filtered
// retrievals bypass it entirely.
type CoachPoolCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCoachPoolCache(redisURL string, ttl time.Duration) (*CoachPoolCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &CoachPoolCache{client: client, ttl: ttl}, nil
}

func (c *CoachPoolCache) GetPool(ctx context.Context) ([]models.Coach, error) {
	payload, err := c.client.Get(ctx, coachPoolKey).Bytes()
	if err != nil {
		return nil, err
	}

	var pool []models.Coach
	if err := json.Unmarshal(payload, &pool); err != nil {
		return nil, err
	}
	return pool, nil
}

func (c *CoachPoolCache) SetPool(ctx context.Context, coaches []models.Coach) error {
	payload, err := json.Marshal(coaches)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, coachPoolKey, payload, c.ttl).Err()
}

func (c *CoachPoolCache) Close() error {
	return c.client.Close()
}
