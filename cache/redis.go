package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache backed by a Redis server.
type Redis struct {
	Client *redis.Client
	Prefix string
}

// NewRedis connects to Redis and verifies the server answers.
func NewRedis(ctx context.Context, opt *redis.Options) (*Redis, error) {
	c := &Redis{Client: redis.NewClient(opt)}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Client.Ping(ctx).Err(); err != nil {
		c.Client.Close()
		return nil, err
	}
	return c, nil
}

func (c *Redis) key(k string) string {
	return c.Prefix + k
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.Client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores val; Redis treats a zero expiration as no expiry.
func (c *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.Client.Set(ctx, c.key(key), val, ttl).Err()
}

func (c *Redis) Delete(ctx context.Context, key string) error {
	return c.Client.Del(ctx, c.key(key)).Err()
}

func (c *Redis) Close() error {
	return c.Client.Close()
}
