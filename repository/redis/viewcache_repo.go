package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/tracker/repository"
)

// getter is satisfied by both the client and a WATCH transaction.
type getter interface {
	Get(ctx context.Context, key string) *redislib.StringCmd
}

type viewCache struct {
	client *redislib.Client
	prefix string
}

// NewViewCache stores rendered view-models as JSON under view:<user>:<key>.
// Invalidation bumps a per-user generation instead of scanning keys, so
// stale entries simply expire.
func NewViewCache(client *redislib.Client) repository.ViewCache {
	return &viewCache{client: client, prefix: "view:"}
}

func (c *viewCache) Get(ctx context.Context, userID, key string, dest interface{}) (int64, bool, error) {
	gen, err := c.generation(ctx, c.client, userID)
	if err != nil {
		return 0, false, err
	}
	raw, err := c.client.Get(ctx, c.key(userID, gen, key)).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return gen, false, nil
		}
		return gen, false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return gen, false, err
	}
	return gen, true, nil
}

// Set writes value under gen inside a WATCH on the generation key. A view
// read before a concurrent Invalidate is silently discarded.
func (c *viewCache) Set(ctx context.Context, userID, key string, gen int64, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	genKey := c.genKey(userID)
	err = c.client.Watch(ctx, func(tx *redislib.Tx) error {
		current, err := c.generation(ctx, tx, userID)
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
			pipe.Set(ctx, c.key(userID, gen, key), payload, ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redislib.TxFailedErr) {
		return nil
	}
	return err
}

func (c *viewCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Incr(ctx, c.genKey(userID)).Err()
}

func (c *viewCache) generation(ctx context.Context, r getter, userID string) (int64, error) {
	gen, err := r.Get(ctx, c.genKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return gen, nil
}

func (c *viewCache) genKey(userID string) string {
	return fmt.Sprintf("%sgen:%s", c.prefix, userID)
}

func (c *viewCache) key(userID string, gen int64, key string) string {
	return fmt.Sprintf("%s%s:%d:%s", c.prefix, userID, gen, key)
}
