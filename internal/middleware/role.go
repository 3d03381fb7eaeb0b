package middleware // middleware provides shared request processing for handlers

import (
    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/iliyamo/gourmet-table/internal/apperr"
)

// Roles carried in the access token's "role" claim.
const (
    RoleCustomer = "CUSTOMER"
    RoleAdmin    = "ADMIN"
)

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles.  It assumes JWTAuth
// has already stored the role in the context under "role".  Requests
// with a missing or foreign role are aborted with 403 Forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    // Build a set of allowed roles for constant‑time lookups.
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get(ContextRole).(string)
            if !ok || !allowed[role] {
                return apperr.Forbidden("forbidden")
            }
            return next(c)
        }
    }
}
