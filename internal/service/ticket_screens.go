package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"kinobilet/internal/auth"
	apperrors "kinobilet/internal/errors"
	"kinobilet/internal/external"
	"kinobilet/internal/logger"
	"kinobilet/internal/metrics"
	"kinobilet/internal/models"
	"kinobilet/internal/reservations"

	"github.com/jonboulle/clockwork"
)

// Load states of a tickets screen
const (
	StateLoading = "loading"
	StateReady   = "ready"
	StateFailed  = "failed"
)

// TicketScreen is the visitor's reservation list with its running payment countdown.
type TicketScreen struct {
	lastUse

	id        string
	countdown *reservations.Countdown
	cancel    context.CancelFunc
	loaded    chan struct{}
	paying    atomic.Bool

	mu      sync.Mutex
	state   string
	loadErr string
	closed  bool
}

func (s *TicketScreen) teardown() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.countdown.Stop()
}

func (s *TicketScreen) status() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.loadErr
}

// TicketCard is one reservation as rendered in a section.
type TicketCard struct {
	models.EnrichedReservation
	TimeLeftText string   `json:"timeLeftText,omitempty"`
	SeatLabels   []string `json:"seatLabels"`
}

type TicketSection struct {
	Name         string       `json:"name"`
	Tickets      []TicketCard `json:"tickets"`
	EmptyMessage string       `json:"emptyMessage,omitempty"`
}

// TicketsView is the render-ready state of a tickets screen.
type TicketsView struct {
	ScreenID         string          `json:"screenId"`
	State            string          `json:"state"`
	Error            string          `json:"error,omitempty"`
	Sections         []TicketSection `json:"sections,omitempty"`
	CountdownRunning bool            `json:"countdownRunning"`
}

// TicketScreens manages tickets screens.
type TicketScreens struct {
	api     CinemaAPI
	events  *eventPublisher
	clock   clockwork.Clock
	loader  *reservations.Loader
	screens *registry[*TicketScreen]
}

func NewTicketScreens(api CinemaAPI, events *eventPublisher, opts Options) *TicketScreens {
	enricher := reservations.NewEnricher(api,
		reservations.WithClock(opts.Clock),
		reservations.WithConcurrency(opts.EnrichConcurrency),
		reservations.WithFallbackHook(func(models.Reservation, error) {
			metrics.EnrichmentFallbacks.Inc()
		}),
	)

	return &TicketScreens{
		api:     api,
		events:  events,
		clock:   opts.Clock,
		loader:  reservations.NewLoader(api, enricher),
		screens: newRegistry[*TicketScreen](metrics.ScreenTickets, opts.Clock),
	}
}

// Open mounts a tickets screen for an authorized visitor and starts loading in the background.
func (t *TicketScreens) Open(ctx context.Context) (*TicketsView, error) {
	token, ok := auth.TokenFromContext(ctx)
	if !ok || !auth.IsAuthorized(token, t.clock.Now()) {
		return nil, apperrors.ErrUnauthorized
	}

	id := newScreenID()
	loadCtx, cancel := context.WithCancel(auth.ContextWithToken(context.Background(), token))
	loadCtx = logger.ContextWithScreenID(loadCtx, id)

	s := &TicketScreen{
		id:        id,
		countdown: reservations.NewCountdown(t.clock),
		cancel:    cancel,
		loaded:    make(chan struct{}),
		state:     StateLoading,
	}
	s.touch(t.clock.Now())
	s.countdown.OnExpire(func(res models.EnrichedReservation) {
		metrics.CountdownExpirations.Inc()
		t.events.expired(res)
	})

	t.screens.add(id, s)
	go t.load(loadCtx, s)

	logger.WithContext(ctx).Info("Tickets screen opened", "screen_id", id)
	return t.view(s), nil
}

func (t *TicketScreens) load(ctx context.Context, s *TicketScreen) {
	defer close(s.loaded)

	list, err := t.loader.Load(ctx)

	// the screen was closed while loading; nothing may change after teardown
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if err != nil {
		logger.WithContext(ctx).Error("Failed to load reservations", "error", err)
		s.state = StateFailed
		s.loadErr = external.UserMessage(err)
		return
	}

	s.countdown.Set(list)
	s.state = StateReady

	logger.WithContext(ctx).Info("Reservations loaded", "count", len(list))
}

func (t *TicketScreens) View(ctx context.Context, screenID string) (*TicketsView, error) {
	s, err := t.screens.get(screenID)
	if err != nil {
		return nil, err
	}
	return t.view(s), nil
}

// WaitLoaded blocks until the initial load of a screen has finished or ctx is done.
func (t *TicketScreens) WaitLoaded(ctx context.Context, screenID string) error {
	s, err := t.screens.get(screenID)
	if err != nil {
		return err
	}

	select {
	case <-s.loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pay pays one unpaid reservation. Only one payment per screen may be in flight.
// On failure the countdown keeps running untouched.
func (t *TicketScreens) Pay(ctx context.Context, screenID, reservationID string) (*models.EnrichedReservation, error) {
	s, err := t.screens.get(screenID)
	if err != nil {
		return nil, err
	}

	if state, _ := s.status(); state != StateReady {
		return nil, apperrors.ErrNotLoaded
	}

	res, ok := s.countdown.Find(reservationID)
	if !ok {
		return nil, apperrors.ErrReservationNotFound
	}
	if res.IsPaid {
		return &res, nil
	}

	if !s.paying.CompareAndSwap(false, true) {
		return nil, apperrors.ErrPaymentInProgress
	}
	defer s.paying.Store(false)

	log := logger.WithContext(logger.ContextWithScreenID(ctx, screenID))

	if err := t.api.PayReservation(ctx, reservationID); err != nil {
		metrics.Payments.WithLabelValues("failed").Inc()
		log.Error("Payment failed", "reservation_id", reservationID, "error", err)
		return nil, fmt.Errorf("failed to pay reservation: %w", err)
	}
	metrics.Payments.WithLabelValues("paid").Inc()

	paid, ok := s.countdown.MarkPaid(reservationID)
	if !ok {
		// dropped by the countdown while the payment was in flight
		res.IsPaid = true
		res.TimeLeft = nil
		res.IsExpired = false
		paid = res
	}

	t.events.paid(reservationID, paid.MovieSessionID)
	log.Info("Reservation paid", "reservation_id", reservationID)
	return &paid, nil
}

func (t *TicketScreens) Close(screenID string) error {
	if !t.screens.remove(screenID) {
		return apperrors.ErrScreenNotFound
	}
	return nil
}

func (t *TicketScreens) CloseIdle(before time.Time) int {
	return t.screens.removeIdle(before)
}

func (t *TicketScreens) view(s *TicketScreen) *TicketsView {
	state, loadErr := s.status()
	v := &TicketsView{
		ScreenID:         s.id,
		State:            state,
		Error:            loadErr,
		CountdownRunning: s.countdown.Running(),
	}
	if state != StateReady {
		return v
	}

	b := reservations.Classify(s.countdown.Snapshot(), t.clock.Now())
	v.Sections = []TicketSection{
		section(reservations.BucketUnpaid, b.Unpaid),
		section(reservations.BucketUpcoming, b.Upcoming),
		section(reservations.BucketPast, b.Past),
	}
	return v
}

func section(name string, list []models.EnrichedReservation) TicketSection {
	sec := TicketSection{Name: name, Tickets: make([]TicketCard, 0, len(list))}
	if len(list) == 0 {
		sec.EmptyMessage = reservations.EmptyMessage(name)
	}

	for _, res := range list {
		card := TicketCard{EnrichedReservation: res, SeatLabels: make([]string, 0, len(res.Seats))}
		if res.TimeLeft != nil {
			card.TimeLeftText = reservations.FormatTimeLeft(*res.TimeLeft)
		}
		for _, seat := range res.Seats {
			card.SeatLabels = append(card.SeatLabels, reservations.SeatLabel(seat.RowNumber, seat.SeatNumber))
		}
		sec.Tickets = append(sec.Tickets, card)
	}
	return sec
}
