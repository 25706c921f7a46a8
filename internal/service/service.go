package service

import (
	"context"
	"log/slog"
	"time"

	"kinobilet/internal/cache"
	"kinobilet/internal/messaging"
	"kinobilet/internal/models"

	"github.com/jonboulle/clockwork"
)

// CinemaAPI is everything the BFF needs from the remote cinema API.
type CinemaAPI interface {
	Register(ctx context.Context, req models.RemoteRegisterRequest) (*models.RegisterResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Movies(ctx context.Context) ([]models.Movie, error)
	MovieSessions(ctx context.Context, movieID int64) ([]models.SessionSummary, error)
	Cinemas(ctx context.Context) ([]models.Cinema, error)
	CinemaSessions(ctx context.Context, cinemaID int64) ([]models.SessionSummary, error)
	MovieSession(ctx context.Context, sessionID int64) (*models.Session, error)
	CreateReservation(ctx context.Context, sessionID int64, req models.BookingRequest) (*models.BookingResponse, error)
	MyReservations(ctx context.Context) ([]models.Reservation, error)
	Settings(ctx context.Context) (*models.Settings, error)
	PayReservation(ctx context.Context, reservationID string) error
}

type Options struct {
	// EnrichConcurrency bounds session lookups per tickets screen load.
	EnrichConcurrency int
	// Clock drives "now" and the payment countdown. Defaults to the wall clock.
	Clock clockwork.Clock
	// Location is used for day keys of session listings. Defaults to time.Local.
	Location *time.Location
}

type Services struct {
	Catalog  *CatalogService
	Auth     *AuthService
	Bookings *BookingScreens
	Tickets  *TicketScreens
}

func NewServices(api CinemaAPI, catalogCache *cache.CatalogCache, publisher messaging.Publisher, opts Options) *Services {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	events := &eventPublisher{publisher: publisher, clock: opts.Clock}

	return &Services{
		Catalog:  NewCatalogService(api, catalogCache, opts.Clock, opts.Location),
		Auth:     NewAuthService(api),
		Bookings: NewBookingScreens(api, events, opts.Clock),
		Tickets:  NewTicketScreens(api, events, opts),
	}
}

// CloseIdle tears down every screen untouched since before and returns how many were closed.
func (s *Services) CloseIdle(before time.Time) int {
	return s.Bookings.CloseIdle(before) + s.Tickets.CloseIdle(before)
}

// CloseAll tears down every open screen.
func (s *Services) CloseAll() {
	s.Bookings.CloseIdle(farFuture)
	s.Tickets.CloseIdle(farFuture)
}

var farFuture = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

// eventPublisher stamps and publishes reservation events; a failed publish is logged, never returned.
type eventPublisher struct {
	publisher messaging.Publisher
	clock     clockwork.Clock
}

func (p *eventPublisher) created(reservationID string, sessionID int64, seats int) {
	p.publish(models.EventReservationCreated, models.ReservationCreatedEvent{
		ReservationID: reservationID,
		SessionID:     sessionID,
		SeatsCount:    seats,
		Timestamp:     p.clock.Now(),
	})
}

func (p *eventPublisher) paid(reservationID string, sessionID int64) {
	p.publish(models.EventReservationPaid, models.ReservationPaidEvent{
		ReservationID: reservationID,
		SessionID:     sessionID,
		Timestamp:     p.clock.Now(),
	})
}

func (p *eventPublisher) expired(res models.EnrichedReservation) {
	p.publish(models.EventReservationExpired, models.ReservationExpiredEvent{
		ReservationID: res.ID,
		SessionID:     res.MovieSessionID,
		BookedAt:      res.BookedAt,
		Timestamp:     p.clock.Now(),
	})
}

func (p *eventPublisher) publish(subject string, event any) {
	if p == nil || p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(subject, event); err != nil {
		slog.Error("Failed to publish event", "subject", subject, "error", err)
	}
}
