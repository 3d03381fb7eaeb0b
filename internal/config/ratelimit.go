package config

import (
    "strings"
    "time"
)

// Key strategies understood by the rate limiter.  The key decides which
// requests share a bucket.
var rateKeyStrategies = map[string]bool{
    "ip": true, "user": true, "route": true,
    "ip_user": true, "ip_route": true, "user_route": true, "ip_user_route": true,
}

// RateLimitConfig sizes the per-client token bucket that sits in front of
// the booking and cart API.
type RateLimitConfig struct {
    Enabled bool

    // Capacity is the burst a client may spend at once, e.g. a diner
    // clicking through seats on the floor plan.
    Capacity int

    // RefillTokens are returned to the bucket every RefillInterval.
    RefillTokens   int
    RefillInterval time.Duration

    // TTL expires idle buckets in Redis.  It never drops below five
    // refills so a bucket is not forgotten while it is still filling up.
    TTL time.Duration

    // KeyStrategy is one of ip, user, route or a combination joined with
    // underscores.  Unknown values fall back to ip_user_route.
    KeyStrategy string

    // Prefix namespaces the bucket keys in a Redis shared with other
    // services.
    Prefix string

    // LocalFallback limits each process on its own when Redis is off or
    // unreachable.  Without it requests pass unlimited in that case.
    LocalFallback bool

    // Debug logs blocked keys and adds the X-RateLimit-Key header to
    // responses.
    Debug bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* from the environment.
// RATE_LIMIT_BURST and RATE_LIMIT_REFILL_EVERY are shorthands that override
// the capacity and the refill settings.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
        LocalFallback:  envBool("RATE_LIMIT_LOCAL_FALLBACK", true),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    if burst := envInt("RATE_LIMIT_BURST", 0); burst > 0 {
        cfg.Capacity = burst
    }
    if every := envDur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
        cfg.RefillTokens, cfg.RefillInterval = 1, every
    }
    return cfg.normalized()
}

func (c RateLimitConfig) normalized() RateLimitConfig {
    c.Capacity = max(c.Capacity, 1)
    c.RefillTokens = max(c.RefillTokens, 1)
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    c.TTL = max(c.TTL, 5*c.RefillInterval)
    c.KeyStrategy = strings.ToLower(strings.TrimSpace(c.KeyStrategy))
    if !rateKeyStrategies[c.KeyStrategy] {
        c.KeyStrategy = "ip_user_route"
    }
    return c
}
