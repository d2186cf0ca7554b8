package jobsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultCacheTTL = 10 * time.Minute

// Cache keeps reshaped results per location in Redis.
type Cache struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		Client: client,
		TTL:    ttl,
		Prefix: "hirevoid:jobs",
	}
}

func (c *Cache) key(location string) string {
	return fmt.Sprintf("%s:%s", c.Prefix, strings.ToLower(strings.TrimSpace(location)))
}

// Get reports ok=false on a miss.
func (c *Cache) Get(ctx context.Context, location string) ([]Job, bool, error) {
	data, err := c.Client.Get(ctx, c.key(location)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var jobs []Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, false, fmt.Errorf("decode cached jobs: %w", err)
	}
	return jobs, true, nil
}

func (c *Cache) Set(ctx context.Context, location string, jobs []Job) error {
	data, err := json.Marshal(jobs)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, c.key(location), data, c.TTL).Err()
}
