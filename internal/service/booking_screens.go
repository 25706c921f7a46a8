package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"kinobilet/internal/auth"
	"kinobilet/internal/booking"
	apperrors "kinobilet/internal/errors"
	"kinobilet/internal/logger"
	"kinobilet/internal/metrics"
	"kinobilet/internal/models"

	"github.com/jonboulle/clockwork"
)

// Message kinds
const (
	MessageSuccess = "success"
	MessageError   = "error"
)

// Message is a short toast shown to the visitor.
type Message struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// feedback collects what the submitter asks the UI to do.
type feedback struct {
	mu            sync.Mutex
	messages      []Message
	redirect      string
	reservationID string
}

func (f *feedback) Navigate(route string) {
	f.mu.Lock()
	f.redirect = route
	f.mu.Unlock()
}

func (f *feedback) Success(msg string) { f.push(MessageSuccess, msg) }
func (f *feedback) Error(msg string)   { f.push(MessageError, msg) }

func (f *feedback) push(kind, text string) {
	f.mu.Lock()
	f.messages = append(f.messages, Message{Kind: kind, Text: text})
	f.mu.Unlock()
}

func (f *feedback) booked(reservationID string) {
	f.mu.Lock()
	f.reservationID = reservationID
	f.mu.Unlock()
}

func (f *feedback) drain() ([]Message, string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	messages, redirect, reservationID := f.messages, f.redirect, f.reservationID
	f.messages, f.redirect, f.reservationID = nil, "", ""
	return messages, redirect, reservationID
}

// BookingScreen is the seat map of one session plus the visitor's pending selection.
type BookingScreen struct {
	lastUse

	id        string
	session   *models.Session
	submitter *booking.Submitter
	feedback  *feedback
	// submitting covers a whole submission, feedback drain included
	submitting atomic.Bool

	mu        sync.Mutex
	selection *booking.Selection
}

func (s *BookingScreen) teardown() {}

// BookingView is the render-ready state of a booking screen.
type BookingView struct {
	ScreenID      string          `json:"screenId"`
	Session       *models.Session `json:"session"`
	Grid          booking.Grid    `json:"grid"`
	SelectedSeats []models.Seat   `json:"selectedSeats"`
	Authorized    bool            `json:"authorized"`
	Loading       bool            `json:"loading"`
}

// SubmitResult is what the visitor sees after pressing "book".
type SubmitResult struct {
	Outcome       booking.Outcome `json:"outcome"`
	ReservationID string          `json:"reservationId,omitempty"`
	Messages      []Message       `json:"messages,omitempty"`
	Redirect      string          `json:"redirect,omitempty"`
	View          *BookingView    `json:"view,omitempty"`
}

// BookingScreens manages booking screens.
type BookingScreens struct {
	api     CinemaAPI
	events  *eventPublisher
	clock   clockwork.Clock
	screens *registry[*BookingScreen]
}

func NewBookingScreens(api CinemaAPI, events *eventPublisher, clock clockwork.Clock) *BookingScreens {
	return &BookingScreens{
		api:     api,
		events:  events,
		clock:   clock,
		screens: newRegistry[*BookingScreen](metrics.ScreenBooking, clock),
	}
}

// Open loads the session detail and mounts a booking screen for it.
func (b *BookingScreens) Open(ctx context.Context, sessionID int64) (*BookingView, error) {
	session, err := b.api.MovieSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	fb := &feedback{}
	s := &BookingScreen{
		id:        newScreenID(),
		session:   session,
		feedback:  fb,
		selection: booking.NewSelection(),
		submitter: booking.NewSubmitter(b.api, fb, fb),
	}
	s.touch(b.clock.Now())
	s.submitter.OnBooked(func(ctx context.Context, sessionID int64, seats []models.Seat, resp *models.BookingResponse) {
		reservationID := ""
		if resp != nil {
			reservationID = resp.ID
		}
		logger.WithContext(ctx).Info("Seats booked",
			"session_id", sessionID,
			"seats_count", len(seats),
			"reservation_id", reservationID)
		fb.booked(reservationID)
		b.events.created(reservationID, sessionID, len(seats))
	})

	b.screens.add(s.id, s)

	logger.WithContext(ctx).Info("Booking screen opened", "screen_id", s.id, "session_id", sessionID)
	return b.view(ctx, s), nil
}

func (b *BookingScreens) View(ctx context.Context, screenID string) (*BookingView, error) {
	s, err := b.screens.get(screenID)
	if err != nil {
		return nil, err
	}
	return b.view(ctx, s), nil
}

// Toggle selects or deselects a seat. Disabled seats can only be deselected.
func (b *BookingScreens) Toggle(ctx context.Context, screenID string, rowNumber, seatNumber int) (*BookingView, error) {
	s, err := b.screens.get(screenID)
	if err != nil {
		return nil, err
	}

	if !booking.InGrid(s.session, rowNumber, seatNumber) {
		return nil, apperrors.ErrSeatOutOfRange
	}

	authorized := auth.Authorized(ctx, b.clock.Now())

	s.mu.Lock()
	status := booking.Status(rowNumber-1, seatNumber-1, s.session.BookedSeats, s.selection.Seats())
	if booking.IsDisabled(status, authorized) {
		s.mu.Unlock()
		return nil, apperrors.ErrSeatUnavailable
	}
	s.selection.Toggle(rowNumber, seatNumber)
	s.mu.Unlock()

	return b.view(ctx, s), nil
}

func (b *BookingScreens) Clear(ctx context.Context, screenID string) (*BookingView, error) {
	s, err := b.screens.get(screenID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.selection.Clear()
	s.mu.Unlock()

	return b.view(ctx, s), nil
}

// Submit books the current selection. A booked screen is closed; on failure the selection is kept.
func (b *BookingScreens) Submit(ctx context.Context, screenID string) (*SubmitResult, error) {
	s, err := b.screens.get(screenID)
	if err != nil {
		return nil, err
	}

	ctx = logger.ContextWithScreenID(ctx, screenID)

	if !s.submitting.CompareAndSwap(false, true) {
		// the in-flight submission owns the feedback
		metrics.BookingSubmissions.WithLabelValues(string(booking.OutcomeBusy)).Inc()
		return &SubmitResult{Outcome: booking.OutcomeBusy, View: b.view(ctx, s)}, nil
	}
	defer s.submitting.Store(false)

	s.mu.Lock()
	seats := s.selection.Seats()
	s.mu.Unlock()

	authorized := auth.Authorized(ctx, b.clock.Now())
	outcome := s.submitter.Submit(ctx, s.session.ID, seats, authorized)
	metrics.BookingSubmissions.WithLabelValues(string(outcome)).Inc()

	if outcome == booking.OutcomeBusy {
		return &SubmitResult{Outcome: outcome, View: b.view(ctx, s)}, nil
	}

	messages, redirect, reservationID := s.feedback.drain()
	result := &SubmitResult{
		Outcome:       outcome,
		ReservationID: reservationID,
		Messages:      messages,
		Redirect:      redirect,
	}

	if outcome == booking.OutcomeBooked {
		b.screens.remove(screenID)
		return result, nil
	}

	result.View = b.view(ctx, s)
	return result, nil
}

func (b *BookingScreens) Close(screenID string) error {
	if !b.screens.remove(screenID) {
		return apperrors.ErrScreenNotFound
	}
	return nil
}

func (b *BookingScreens) CloseIdle(before time.Time) int {
	return b.screens.removeIdle(before)
}

func (b *BookingScreens) view(ctx context.Context, s *BookingScreen) *BookingView {
	authorized := auth.Authorized(ctx, b.clock.Now())

	s.mu.Lock()
	selected := s.selection.Seats()
	s.mu.Unlock()

	return &BookingView{
		ScreenID:      s.id,
		Session:       s.session,
		Grid:          booking.BuildGrid(s.session, selected, authorized),
		SelectedSeats: selected,
		Authorized:    authorized,
		Loading:       s.submitter.Loading(),
	}
}
