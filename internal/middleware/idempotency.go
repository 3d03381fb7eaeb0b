package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/rs/zerolog"

    "github.com/iliyamo/gourmet-table/internal/apperr"
    "github.com/iliyamo/gourmet-table/internal/config"
)

// ReplayHeader marks a response served from the idempotency store.
const ReplayHeader = "Idempotent-Replayed"

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }
func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit <= 0 || cw.size+int64(len(b)) <= cw.limit {
        cw.buf.Write(b)
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// truncated reports whether the body outgrew the capture limit.
func (cw *captureWriter) truncated() bool { return cw.limit > 0 && cw.size > cw.limit }

// idempotencyKey scopes the client key to the caller and the endpoint so
// two users cannot read each other's stored responses.
func idempotencyKey(cfg config.IdempotencyConfig, c echo.Context, clientKey string) string {
    r := c.Request()
    tail := strings.Join([]string{actorKey(c), r.Method, r.URL.Path, clientKey}, "|")
    sum := sha1.Sum([]byte(tail))
    return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:8+len(hdrJSON)], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    hdr := make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, hdr, bs[8+hlen:], true
}

// replay writes a stored response.  It reports false when nothing usable
// is stored under key.
func replay(c echo.Context, rdb *redis.Client, key string) (bool, error) {
    bs, err := rdb.Get(c.Request().Context(), key).Bytes()
    if err != nil {
        if errors.Is(err, redis.Nil) {
            return false, nil
        }
        return false, err
    }
    status, hdr, body, ok := decodePayload(bs)
    if !ok {
        return false, nil
    }
    for k, vals := range hdr {
        if strings.EqualFold(k, echo.HeaderContentLength) { continue }
        for _, v := range vals {
            c.Response().Header().Add(k, v)
        }
    }
    c.Response().Header().Set(ReplayHeader, "true")
    c.Response().WriteHeader(status)
    if len(body) > 0 {
        _, _ = c.Response().Write(body)
    }
    return true, nil
}

// NewIdempotency replays the first successful response of a request that
// carries the configured header (Idempotency-Key by default).  While the
// first request is still running, a duplicate receives 409.  Requests
// without the header, and every request when Redis is absent, pass
// straight through.
func NewIdempotency(cfg config.IdempotencyConfig, rdb *redis.Client, log zerolog.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return func(c echo.Context) error { return next(c) } }
    }
    maxBody := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            clientKey := strings.TrimSpace(c.Request().Header.Get(cfg.Header))
            if clientKey == "" {
                return next(c)
            }
            if len(clientKey) > 255 {
                return apperr.Validation("idempotency key is too long")
            }

            ctx := c.Request().Context()
            key := idempotencyKey(cfg, c, clientKey)
            lockKey := key + ":lock"

            if done, err := replay(c, rdb, key); err != nil {
                log.Warn().Err(err).Msg("idempotency: redis unavailable")
                return next(c)
            } else if done {
                return nil
            }

            acquired, err := rdb.SetNX(ctx, lockKey, "1", cfg.LockTTL).Result()
            if err != nil {
                log.Warn().Err(err).Msg("idempotency: redis unavailable")
                return next(c)
            }
            if !acquired {
                if done, _ := replay(c, rdb, key); done {
                    return nil
                }
                return apperr.Conflict("a request with this idempotency key is already in progress")
            }
            defer rdb.Del(context.Background(), lockKey)

            // The first request may have finished between the lookup and the lock.
            if done, _ := replay(c, rdb, key); done {
                return nil
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw

            if err := next(c); err != nil {
                return err
            }

            if cw.status < 200 || cw.status > 299 || cw.truncated() {
                return nil
            }
            hdr := make(http.Header, len(c.Response().Header()))
            for k, vals := range c.Response().Header() {
                hdr[k] = append([]string(nil), vals...)
            }
            payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
            if err != nil {
                return nil
            }
            if err := rdb.SetEx(context.Background(), key, payload, cfg.TTL).Err(); err != nil {
                log.Warn().Err(err).Msg("idempotency: storing response failed")
            }
            return nil
        }
    }
}
