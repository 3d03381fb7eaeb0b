package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"

    "github.com/iliyamo/gourmet-table/internal/config"
)

// AuditConsumer binds a durable queue to every booking event and appends
// each one to a log file as a single human-friendly line.
type AuditConsumer struct {
    cfg config.QueueConfig
    log zerolog.Logger
}

func NewAuditConsumer(cfg config.QueueConfig, log zerolog.Logger) *AuditConsumer {
    return &AuditConsumer{cfg: cfg, log: log.With().Str("component", "audit-consumer").Logger()}
}

// Run connects, consumes and reconnects with exponential backoff until
// ctx is cancelled.  Processing errors reject the offending message
// without requeueing so the loop keeps going.
func (a *AuditConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(a.cfg.URL)
        if err != nil {
            a.log.Warn().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = a.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        a.log.Warn().Err(err).Msg("consume loop ended; reconnecting")
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func (a *AuditConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        a.log.Warn().Err(err).Msg("set QoS failed")
    }
    if err := declareExchange(ch, a.cfg.Exchange); err != nil {
        return err
    }
    if _, err := ch.QueueDeclare(a.cfg.AuditQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    if err := ch.QueueBind(a.cfg.AuditQueue, "booking.#", a.cfg.Exchange, false, nil); err != nil {
        return fmt.Errorf("queue bind: %w", err)
    }

    msgs, err := ch.Consume(a.cfg.AuditQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := a.handleMessage(d.Body); err != nil {
                a.log.Error().Err(err).Msg("handle message failed")
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (a *AuditConsumer) handleMessage(body []byte) error {
    var ev BookingEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll(filepath.Dir(a.cfg.AuditLogPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(a.cfg.AuditLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(formatAuditLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func formatAuditLine(ev BookingEvent) string {
    seats := fmt.Sprintf("[%s]", strings.Join(ev.Seats, ","))
    switch ev.Type {
    case RoutingBookingStatusChanged:
        return fmt.Sprintf("[%s] Booking status changed | booking_id=%s | owner_id=%d | date=%s | %s -> %s | seats=%s\n",
            ev.OccurredAt, ev.BookingID, ev.OwnerID, ev.ServiceDate, ev.PreviousStatus, ev.Status, seats)
    default:
        return fmt.Sprintf("[%s] Booking created | booking_id=%s | owner_id=%d | name=%q | date=%s | time=%s | party=%d | seats=%s\n",
            ev.OccurredAt, ev.BookingID, ev.OwnerID, ev.ContactName, ev.ServiceDate, ev.ServiceTime, ev.PartySize, seats)
    }
}
