// Package queue defines message payloads exchanged over the message broker.
package queue

// Routing keys of booking events on the booking exchange.
const (
    RoutingBookingCreated       = "booking.created"
    RoutingBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is published after a booking is committed or changes
// status.  It carries enough for downstream consumers to log or notify
// without querying the primary database.
type BookingEvent struct {
    Type           string   `json:"type"`
    BookingID      string   `json:"booking_id"`
    OwnerID        uint64   `json:"owner_id"`
    ContactName    string   `json:"contact_name"`
    ServiceDate    string   `json:"service_date"`
    ServiceTime    string   `json:"service_time"`
    Seats          []string `json:"seats"`
    PartySize      int      `json:"party_size"`
    Status         string   `json:"status"`
    PreviousStatus string   `json:"previous_status,omitempty"`
    OccurredAt     string   `json:"occurred_at"`
}
