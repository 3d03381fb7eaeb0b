package model

import (
	"strings"
	"time"
)

// BookingStatus is the lifecycle state of a table booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusApproved  BookingStatus = "Approved"
	StatusCancelled BookingStatus = "Cancelled"
)

// ParseBookingStatus accepts any casing of the three known statuses.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, true
	case "approved":
		return StatusApproved, true
	case "cancelled", "canceled":
		return StatusCancelled, true
	}
	return "", false
}

// HoldsSeats reports whether a booking in this status occupies its seats.
func (s BookingStatus) HoldsSeats() bool { return s != StatusCancelled }

// Booking is a table reservation for one service date.  PartySize is
// always len(ReservedSeats) and is derived on read, never stored.
//
// Fields:
//  ID               – generated UUID, immutable.
//  OwnerID          – user who placed the booking.
//  Contact*         – contact snapshot taken at booking time.
//  ServiceDate      – calendar date, YYYY-MM-DD; the conflict scope.
//  ServiceTime      – informational slot, not part of the conflict key.
//  ReservedSeats    – seat tokens in floor plan order.
//  OwnerDisplayName – filled only on admin listings.
type Booking struct {
	ID               string        `json:"id"`
	OwnerID          uint64        `json:"ownerRef"`
	ContactName      string        `json:"contactName"`
	ContactEmail     string        `json:"contactEmail"`
	ContactPhone     string        `json:"contactPhone"`
	ServiceDate      string        `json:"serviceDate"`
	ServiceTime      string        `json:"serviceTime"`
	PartySize        int           `json:"partySize"`
	ReservedSeats    []string      `json:"reservedSeats"`
	Note             string        `json:"note,omitempty"`
	Status           BookingStatus `json:"status"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
	OwnerDisplayName string        `json:"ownerDisplayName,omitempty"`
}

// Occupancy is the set of seats taken on one service date.
type Occupancy struct {
	ServiceDate   string   `json:"serviceDate"`
	BookedSeats   []string `json:"bookedSeats"`
	TotalBookings int      `json:"totalBookings"`
}

// BookingStats summarises bookings for the admin dashboard.
type BookingStats struct {
	TotalBookings   int       `json:"totalBookings"`
	PendingBookings int       `json:"pendingBookings"`
	TodayBookings   int       `json:"todayBookings"`
	RecentBookings  []Booking `json:"recentBookings"`
}
