package cache

import (
	"github.com/rs/zerolog/log"

	"docanalyzer/internal/config"
	"docanalyzer/internal/port"
)

// New returns a Redis cache when an address is configured and the in-process
// cache otherwise. A Redis connection failure also falls back to memory so the
// API can start without Redis.
func New(cfg config.RedisConfig) port.Cache {
	if cfg.Addr == "" {
		log.Info().Msg("cache.New: redis not configured, using in-memory cache")
		return NewMemoryCache()
	}
	rc, err := NewRedisCache(cfg)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("cache.New: redis unavailable, using in-memory cache")
		return NewMemoryCache()
	}
	log.Info().Str("addr", cfg.Addr).Msg("cache.New: using redis cache")
	return rc
}
