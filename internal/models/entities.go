package models

import (
	"time"
)

// Seat identifies a physical seat by its 1-based row and number.
type Seat struct {
	RowNumber  int `json:"rowNumber" validate:"required,min=1"`
	SeatNumber int `json:"seatNumber" validate:"required,min=1"`
}

// SeatGrid - размеры зала сеанса
type SeatGrid struct {
	Rows        int `json:"rows"`
	SeatsPerRow int `json:"seatsPerRow"`
}

// Session is a single scheduled showing with its seat map, as reported by the cinema API.
type Session struct {
	ID          int64     `json:"id"`
	MovieID     int64     `json:"movieId"`
	CinemaID    int64     `json:"cinemaId"`
	StartTime   time.Time `json:"startTime"`
	Seats       SeatGrid  `json:"seats"`
	BookedSeats []Seat    `json:"bookedSeats"`
}

// SessionSummary is the short form returned by the per-movie and per-cinema session listings.
type SessionSummary struct {
	ID        int64     `json:"id"`
	MovieID   int64     `json:"movieId"`
	CinemaID  int64     `json:"cinemaId"`
	StartTime time.Time `json:"startTime"`
}

// Movie represents a catalog entry
type Movie struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Year          int     `json:"year"`
	Rating        float64 `json:"rating"`
	PosterImage   string  `json:"posterImage"`
	LengthMinutes int     `json:"lengthMinutes"`
	Description   string  `json:"description"`
}

// Cinema represents a venue
type Cinema struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Reservation is a booked set of seats owned by the current user.
type Reservation struct {
	ID             string    `json:"id"`
	UserID         int64     `json:"userId"`
	MovieSessionID int64     `json:"movieSessionId"`
	SessionID      int64     `json:"sessionId"`
	BookedAt       time.Time `json:"bookedAt"`
	Seats          []Seat    `json:"seats"`
	IsPaid         bool      `json:"isPaid"`
}

// EnrichedReservation is a Reservation joined with catalog names and the payment countdown.
// TimeLeft and IsExpired are only meaningful while the reservation is unpaid.
type EnrichedReservation struct {
	Reservation
	SessionDetail *Session `json:"sessionDetail,omitempty"`
	MovieTitle    string   `json:"movieTitle"`
	CinemaName    string   `json:"cinemaName"`
	TimeLeft      *int     `json:"timeLeft,omitempty"`
	IsExpired     bool     `json:"isExpired"`
}

// Settings - серверные настройки окна оплаты
type Settings struct {
	BookingPaymentTimeSeconds int `json:"bookingPaymentTimeSeconds"`
}

// PaymentWindow returns the payment window as a duration.
func (s Settings) PaymentWindow() time.Duration {
	return time.Duration(s.BookingPaymentTimeSeconds) * time.Second
}
