package middleware

// identity.go holds the helpers that tell who is calling.  JWTAuth stores
// the token subject under "user_id"; requests without a token are "anon".

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// ContextUserID and ContextRole are the echo context keys set by JWTAuth.
const (
    ContextUserID = "user_id"
    ContextRole   = "role"
)

// actorKey returns a string identifying the caller for rate limit and
// idempotency keys.
func actorKey(c echo.Context) string {
    switch v := c.Get(ContextUserID).(type) {
    case string:
        if v != "" {
            return v
        }
    case uint64:
        return strconv.FormatUint(v, 10)
    case float64:
        return strconv.FormatFloat(v, 'f', -1, 64)
    }
    return "anon"
}
