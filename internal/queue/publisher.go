package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"

    "github.com/iliyamo/gourmet-table/internal/config"
)

// Publisher sends booking events to the broker.
type Publisher interface {
    Publish(ctx context.Context, ev BookingEvent) error
}

// NoopPublisher drops every event.  Used when the broker is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, BookingEvent) error { return nil }

// AMQPPublisher publishes to a durable topic exchange.  Each publish dials
// its own connection; booking writes are rare enough that holding a
// channel open across broker restarts is not worth the reconnect logic.
type AMQPPublisher struct {
    url      string
    exchange string
    log      zerolog.Logger
}

func NewAMQPPublisher(cfg config.QueueConfig, log zerolog.Logger) *AMQPPublisher {
    return &AMQPPublisher{url: cfg.URL, exchange: cfg.Exchange, log: log.With().Str("component", "publisher").Logger()}
}

// Publish sends ev with its Type as routing key.  Messages are marked as
// persistent.  Errors are logged and returned so the caller can choose to
// ignore them.
func (p *AMQPPublisher) Publish(ctx context.Context, ev BookingEvent) error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        p.log.Warn().Err(err).Msg("rabbitmq dial failed")
        return fmt.Errorf("rabbitmq dial: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.Warn().Err(err).Msg("rabbitmq channel open failed")
        return fmt.Errorf("rabbitmq channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := declareExchange(ch, p.exchange); err != nil {
        p.log.Warn().Err(err).Msg("rabbitmq exchange declare failed")
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, p.exchange, ev.Type, false, false, pub); err != nil {
        p.log.Warn().Err(err).Str("routing_key", ev.Type).Msg("rabbitmq publish failed")
        return fmt.Errorf("publish message: %w", err)
    }
    p.log.Debug().Str("routing_key", ev.Type).Str("booking_id", ev.BookingID).Msg("event published")
    return nil
}

func declareExchange(ch *amqp.Channel, name string) error {
    if err := ch.ExchangeDeclare(name, "topic", true, false, false, false, nil); err != nil {
        return fmt.Errorf("exchange declare: %w", err)
    }
    return nil
}
