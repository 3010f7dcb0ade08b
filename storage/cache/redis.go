// Package cache implements the report cache on Redis.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/report"
)

type reportCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ report.Cache = (*reportCache)(nil)

// NewReportCache connects to Redis and returns a report.Cache storing JSON
// snapshots with the configured TTL.
func NewReportCache(ctx context.Context, conf *core.Config) (*reportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return &reportCache{
		client: client,
		ttl:    conf.Redis.StatsTTL,
	}, nil
}

func (c *reportCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, errors.Wrap(err, "getting cached report")
	}
	if err = json.Unmarshal(data, dst); err != nil {
		return false, errors.Wrap(err, "decoding cached report")
	}
	return true, nil
}

func (c *reportCache) Set(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding report")
	}
	if err = c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "caching report")
	}
	return nil
}

func (c *reportCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "dropping cached reports")
	}
	return nil
}

func (c *reportCache) Close() error {
	return c.client.Close()
}
