package models

import "time"

// NATS Event Types
const (
	EventReservationCreated = "reservation.created"
	EventReservationPaid    = "reservation.paid"
	EventReservationExpired = "reservation.expired"
)

// ReservationCreatedEvent represents a successful seat booking submission
type ReservationCreatedEvent struct {
	ReservationID string    `json:"reservation_id"`
	SessionID     int64     `json:"session_id"`
	SeatsCount    int       `json:"seats_count"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReservationPaidEvent represents a successful payment call
type ReservationPaidEvent struct {
	ReservationID string    `json:"reservation_id"`
	SessionID     int64     `json:"session_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReservationExpiredEvent represents a reservation whose payment window ran out on the client.
// The cinema API remains the source of truth for the actual expiry.
type ReservationExpiredEvent struct {
	ReservationID string    `json:"reservation_id"`
	SessionID     int64     `json:"session_id"`
	BookedAt      time.Time `json:"booked_at"`
	Timestamp     time.Time `json:"timestamp"`
}
