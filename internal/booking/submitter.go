package booking

import (
	"context"
	"log/slog"
	"sync/atomic"

	"kinobilet/internal/models"
)

// Outcome of a booking submission.
type Outcome string

const (
	OutcomeBooked        Outcome = "booked"
	OutcomeNotAuthorized Outcome = "not-authorized"
	OutcomeNoSelection   Outcome = "no-selection"
	OutcomeFailed        Outcome = "failed"
	// OutcomeBusy is returned when a submission is already in flight for this screen.
	OutcomeBusy Outcome = "busy"
)

const (
	RouteLogin     = "/auth/login"
	RouteMyTickets = "/my-tickets"

	MessageNoSelection = "Select at least one seat"
	MessageBooked      = "Seats booked successfully!"
	MessageFailed      = "Booking failed"
)

// Reserver creates a reservation on the cinema API.
type Reserver interface {
	CreateReservation(ctx context.Context, sessionID int64, req models.BookingRequest) (*models.BookingResponse, error)
}

// Navigator moves the visitor to another screen.
type Navigator interface {
	Navigate(route string)
}

// Notifier surfaces short user-visible messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Submitter runs the authorization → validation → reservation → feedback flow of one booking screen.
type Submitter struct {
	reserver Reserver
	nav      Navigator
	notify   Notifier
	onBooked func(ctx context.Context, sessionID int64, seats []models.Seat, resp *models.BookingResponse)

	loading atomic.Bool
}

func NewSubmitter(reserver Reserver, nav Navigator, notify Notifier) *Submitter {
	return &Submitter{
		reserver: reserver,
		nav:      nav,
		notify:   notify,
	}
}

// OnBooked registers a callback invoked after a successful reservation, before navigation.
func (s *Submitter) OnBooked(fn func(ctx context.Context, sessionID int64, seats []models.Seat, resp *models.BookingResponse)) {
	s.onBooked = fn
}

// Loading reports whether a submission is in flight.
func (s *Submitter) Loading() bool {
	return s.loading.Load()
}

// Submit books the selected seats of a session.
func (s *Submitter) Submit(ctx context.Context, sessionID int64, selection []models.Seat, authorized bool) Outcome {
	if !authorized {
		s.nav.Navigate(RouteLogin)
		return OutcomeNotAuthorized
	}

	if len(selection) == 0 {
		s.notify.Error(MessageNoSelection)
		return OutcomeNoSelection
	}

	if !s.loading.CompareAndSwap(false, true) {
		return OutcomeBusy
	}
	defer s.loading.Store(false)

	seats := make([]models.Seat, len(selection))
	copy(seats, selection)

	resp, err := s.reserver.CreateReservation(ctx, sessionID, models.BookingRequest{Seats: seats})
	if err != nil {
		slog.Error("Failed to create reservation",
			"error", err,
			"session_id", sessionID,
			"seats_count", len(seats))
		s.notify.Error(MessageFailed)
		return OutcomeFailed
	}

	if s.onBooked != nil {
		s.onBooked(ctx, sessionID, seats, resp)
	}

	s.notify.Success(MessageBooked)
	s.nav.Navigate(RouteMyTickets)
	return OutcomeBooked
}
