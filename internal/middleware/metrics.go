package middleware

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/gourmet-table/internal/metrics"
)

// Metrics counts every request by method, matched route and final status.
func Metrics() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            err := next(c)
            status := c.Response().Status
            if err != nil {
                status, _ = Resolve(err)
            }
            route := c.Path()
            if route == "" {
                route = "unmatched"
            }
            metrics.IncHTTP(c.Request().Method, route, status)
            return err
        }
    }
}
