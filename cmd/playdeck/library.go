package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"playdeck/internal/library"
	"playdeck/shared/go/config"
)

// openLibraryKV returns a Redis backed KV when REDIS_ADDR is set and an
// in-process one otherwise. The returned close func is never nil.
func openLibraryKV(ctx context.Context, cfg config.RedisConfig) (library.KV, func() error, error) {
	if cfg.Addr == "" {
		log.Info().Msg("REDIS_ADDR not set, keeping recently played and favorites in memory")
		return library.NewMemoryKV(), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	kv := library.NewRedisKV(client, "playdeck:")

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := kv.Ping(pingCtx); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}

	log.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("library store connected to redis")
	return kv, client.Close, nil
}
