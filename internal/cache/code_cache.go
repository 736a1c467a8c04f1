package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeCache reserves candidate join codes in Redis so two concurrent lobby
// creators cannot both claim the same code between the uniqueness check and
// the insert. Reservations expire on their own; Release is for the failure
// path where the code never reached the store.
type CodeCache interface {
	Reserve(ctx context.Context, joincode int) (bool, error)
	Release(ctx context.Context, joincode int) error
}

type codeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCodeCache creates a new join code reservation cache
func NewCodeCache(client *redis.Client) CodeCache {
	return &codeCache{
		client: client,
		ttl:    time.Minute,
	}
}

func (c *codeCache) key(joincode int) string {
	return fmt.Sprintf("joincode:%06d", joincode)
}

func (c *codeCache) Reserve(ctx context.Context, joincode int) (bool, error) {
	return c.client.SetNX(ctx, c.key(joincode), 1, c.ttl).Result()
}

func (c *codeCache) Release(ctx context.Context, joincode int) error {
	return c.client.Del(ctx, c.key(joincode)).Err()
}
