package handler // handler defines http handlers

import (
    "errors"  // errors provides sentinel values used in getUserID
    "strconv" // strconv converts strings to numeric types

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/gourmet-table/internal/apperr"
)

var errNoUser = errors.New("invalid user_id in context")

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id") // fetch user_id from context
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil && n > 0 {
            return n, nil
        }
    }
    return 0, errNoUser
}

// currentOwner is getUserID for handlers; a missing user is 401.
func currentOwner(c echo.Context) (uint64, error) {
    id, err := getUserID(c)
    if err != nil {
        return 0, apperr.Unauthorized("unauthorized")
    }
    return id, nil
}

// productRefParam reads the :productRef path parameter.
func productRefParam(c echo.Context) (uint64, error) {
    ref, err := strconv.ParseUint(c.Param("productRef"), 10, 64)
    if err != nil || ref == 0 {
        return 0, apperr.Validation("invalid product reference")
    }
    return ref, nil
}

// bind decodes the request body into dst.
func bind(c echo.Context, dst any) error {
    if err := c.Bind(dst); err != nil {
        return apperr.Validation("invalid request body")
    }
    return nil
}
