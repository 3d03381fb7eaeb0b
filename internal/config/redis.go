package config

// Redis backs the shared rate limiter and the idempotency replay store.
// Neither holds booking occupancy or cart contents.  When the server is
// unreachable at startup the constructor returns nil and both middlewares
// degrade: rate limiting falls back to in-process buckets and idempotency
// replay is switched off.

import (
    "context"
    "crypto/tls"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisOptions builds client options from the environment:
//   REDIS_URL – redis:// or rediss:// URL; when set it wins over the rest
//   REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//   REDIS_ADDR – host:port shorthand used when host/port are not both set
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number (default 0)
//   REDIS_TLS – enable TLS when true
func RedisOptions() (*redis.Options, error) {
    if url := envStr("REDIS_URL", ""); url != "" {
        return redis.ParseURL(url)
    }
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
        addr = host + ":" + port
    }
    opts := &redis.Options{
        Addr:     addr,
        Password: envStr("REDIS_PASSWORD", ""),
        DB:       envInt("REDIS_DB", 0),
    }
    if envBool("REDIS_TLS", false) {
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    return opts, nil
}

// NewRedisClient connects with RedisOptions.  It returns nil when Redis is
// disabled (REDIS_ENABLED=false), misconfigured, or does not answer a
// ping within two seconds.
func NewRedisClient() *redis.Client {
    if !envBool("REDIS_ENABLED", true) {
        return nil
    }
    opts, err := RedisOptions()
    if err != nil {
        return nil
    }
    client := redis.NewClient(opts)
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
