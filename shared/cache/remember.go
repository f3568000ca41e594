package cache

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Remember returns the cached value under key, or calls load and stores its result for ttl
// seconds. The store completes before Remember returns, so an invalidation issued after the
// caller has its answer cannot be overtaken by it. A failed store is only logged. Errors from
// load are returned as is and never cached.
func Remember[T any](ctx context.Context, c RedisCache, key string, ttl int, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if err := c.Get(ctx, key, &cached); err == nil {
		log.Debug().Str("cacheKey", key).Msg("cache hit")

		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if err := c.Save(ctx, key, value, ttl); err != nil {
		log.Error().Err(err).Str("cacheKey", key).Msg("failed to save to cache")
	}

	return value, nil
}
