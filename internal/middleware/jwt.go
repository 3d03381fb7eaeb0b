package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "strings" // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/gourmet-table/internal/apperr"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject and role claims into the request
// context.  Tokens are issued by the account service; this service only
// verifies them with the shared secret.  Handlers read the caller via
// c.Get("user_id") and c.Get("role").
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header starts with "Bearer " followed by the JWT.
            auth := c.Request().Header.Get(echo.HeaderAuthorization)
            if !strings.HasPrefix(auth, "Bearer ") {
                return apperr.Unauthorized("missing bearer token")
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Only HMAC signed tokens are accepted.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            }, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
            if err != nil || !tok.Valid {
                return apperr.Unauthorized("invalid token")
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return apperr.Unauthorized("invalid claims")
            }
            sub, err := claims.GetSubject()
            if err != nil || sub == "" {
                return apperr.Unauthorized("token has no subject")
            }

            // Downstream consumers do their own type assertions.
            c.Set(ContextUserID, sub)
            c.Set(ContextRole, claims["role"])
            return next(c)
        }
    }
}
