package providers

import (
	"context"
	"dashgate/internal/structures"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 500 * time.Millisecond

// RedisCacheProvider keeps tab storage in Redis so several dashgate
// instances behind a balancer see the same tabs.
type RedisCacheProvider struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger Logger
}

func NewRedisCacheProvider(conf *structures.Config, logger Logger) *RedisCacheProvider {
	rdb := redis.NewClient(&redis.Options{
		Addr:         conf.Storage.RedisAddr,
		DB:           conf.Storage.RedisDB,
		DialTimeout:  redisOpTimeout,
		ReadTimeout:  redisOpTimeout,
		WriteTimeout: redisOpTimeout,
		MaxRetries:   -1,
	})
	logger.Infof(TypeApp, "Tab storage backed by redis at %s", conf.Storage.RedisAddr)
	return &RedisCacheProvider{
		rdb:    rdb,
		ttl:    conf.Storage.TabTTL,
		logger: logger,
	}
}

func (c *RedisCacheProvider) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warnf(TypeCache, "redis get %s: %s", key, err)
		}
		return nil, false
	}
	return val, true
}

func (c *RedisCacheProvider) Set(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warnf(TypeCache, "redis set %s: %s", key, err)
	}
}

func (c *RedisCacheProvider) Del(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.logger.Warnf(TypeCache, "redis del %s: %s", key, err)
	}
}

func (c *RedisCacheProvider) Touch(key string) {
	if c.ttl <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := c.rdb.Expire(ctx, key, c.ttl).Err(); err != nil {
		c.logger.Warnf(TypeCache, "redis expire %s: %s", key, err)
	}
}

func (c *RedisCacheProvider) Close() error {
	return c.rdb.Close()
}
