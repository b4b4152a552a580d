package counter

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "webhook:counters:"
	recordTimeout = 250 * time.Millisecond
)

// Counter keeps per-provider outcome counts in Redis hashes, one hash per
// provider with one field per label.
type Counter struct {
	client    *redis.Client
	providers []string
}

// New creates a counter for the given providers. Stats reports these even when
// nothing has been counted yet.
func New(client *redis.Client, providers ...string) *Counter {
	return &Counter{client: client, providers: providers}
}

func key(provider string) string {
	return keyPrefix + provider
}

// Record increments provider/label. Failures are logged and dropped.
func (c *Counter) Record(ctx context.Context, provider, label string) {
	if c == nil || c.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := c.client.HIncrBy(ctx, key(provider), label, 1).Err(); err != nil {
		log.Warnf("[Counter] Failed to record %s/%s: %v", provider, label, err)
	}
}

// Stats returns label counts per provider.
func (c *Counter) Stats(ctx context.Context) (map[string]map[string]int64, error) {
	out := make(map[string]map[string]int64, len(c.providers))
	for _, provider := range c.providers {
		data, err := c.client.HGetAll(ctx, key(provider)).Result()
		if err != nil {
			return nil, err
		}
		counts := make(map[string]int64, len(data))
		for label, raw := range data {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				continue
			}
			counts[label] = n
		}
		out[provider] = counts
	}
	return out, nil
}

// Reset deletes the counters of every known provider.
func (c *Counter) Reset(ctx context.Context) error {
	keys := make([]string, 0, len(c.providers))
	for _, provider := range c.providers {
		keys = append(keys, key(provider))
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
