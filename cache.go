package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// statsCache é um cache opcional para respostas agregadas do painel.
// Sem REDIS_ADDR o cliente fica nil e Get/Set viram no-ops: o Redis é
// conveniência, nunca dependência.
type statsCache struct {
	rdb *redis.Client
}

func openStatsCache() *statsCache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return &statsCache{}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("cache: redis at %s unreachable, running without cache: %v", addr, err)
		_ = rdb.Close()
		return &statsCache{}
	}
	log.Printf("cache: redis connected at %s", addr)
	return &statsCache{rdb: rdb}
}

func (c *statsCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (c *statsCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		log.Printf("cache: set %s failed: %v", key, err)
	}
}
