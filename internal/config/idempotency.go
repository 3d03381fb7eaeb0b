package config

import "time"

// IdempotencyConfig defines settings for the Idempotency-Key replay
// middleware.  A completed response is stored under the key for TTL so a
// retried submission receives the original answer instead of running twice.
// LockTTL bounds how long an in-flight request holds the key.  Responses
// larger than MaxBodyBytes are not stored.
type IdempotencyConfig struct {
    Enabled      bool
    Header       string
    TTL          time.Duration
    LockTTL      time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadIdempotencyConfig reads environment variables to build an
// IdempotencyConfig.  Defaults are used when variables are not set.
func LoadIdempotencyConfig() IdempotencyConfig {
    cfg := IdempotencyConfig{
        Enabled:      envBool("IDEMPOTENCY_ENABLED", true),
        Header:       envStr("IDEMPOTENCY_HEADER", "Idempotency-Key"),
        TTL:          envDur("IDEMPOTENCY_TTL", 24*time.Hour),
        LockTTL:      envDur("IDEMPOTENCY_LOCK_TTL", 30*time.Second),
        Prefix:       envStr("IDEMPOTENCY_PREFIX", "idem"),
        MaxBodyBytes: envInt("IDEMPOTENCY_MAX_BODY_BYTES", 1<<20),
    }
    if cfg.TTL <= 0 { cfg.TTL = 24 * time.Hour }
    if cfg.LockTTL <= 0 { cfg.LockTTL = 30 * time.Second }
    return cfg
}
