package middleware

import (
    "errors"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/iliyamo/gourmet-table/internal/apperr"
)

// ErrorHandler renders every error returned by a handler or middleware as
// {success:false, code, message, details}.  Internal errors are logged
// with their cause and answered with a generic message.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
    return func(err error, c echo.Context) {
        if c.Response().Committed {
            return
        }
        status, ae := Resolve(err)
        if ae.Kind == apperr.KindInternal {
            log.Error().Err(err).
                Str("method", c.Request().Method).
                Str("route", c.Path()).
                Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
                Msg("request failed")
        }
        if c.Request().Method == http.MethodHead {
            _ = c.NoContent(status)
            return
        }
        _ = c.JSON(status, ae.Body())
    }
}

// Resolve maps err to the status and application error sent to clients.
func Resolve(err error) (int, *apperr.Error) {
    var he *echo.HTTPError
    if errors.As(err, &he) {
        msg := ""
        if he.Message != nil {
            msg = fmt.Sprint(he.Message)
        }
        ae := apperr.FromStatus(he.Code, msg)
        if he.Code >= http.StatusInternalServerError {
            ae = apperr.Internal(err)
        }
        return he.Code, ae
    }
    ae := apperr.As(err)
    return ae.Status(), ae
}
