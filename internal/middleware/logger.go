package middleware

import (
    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/rs/zerolog"
)

// RequestID tags each request with an X-Request-ID, keeping one supplied
// by the client.
func RequestID() echo.MiddlewareFunc {
    return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
        Generator: func() string { return uuid.NewString() },
    })
}

// RequestLogger writes one structured line per request.
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:    true,
        LogURI:       true,
        LogRoutePath: true,
        LogStatus:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            ev := log.Info()
            if v.Status >= 500 {
                ev = log.Error()
            } else if v.Status >= 400 {
                ev = log.Warn()
            }
            ev.Str("method", v.Method).
                Str("uri", v.URI).
                Str("route", v.RoutePath).
                Int("status", v.Status).
                Dur("latency", v.Latency).
                Str("ip", v.RemoteIP).
                Str("request_id", v.RequestID).
                Str("actor", actorKey(c))
            if v.Error != nil {
                ev = ev.Err(v.Error)
            }
            ev.Msg("request")
            return nil
        },
    })
}
