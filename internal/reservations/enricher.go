// Package reservations turns the visitor's raw reservations into display-ready records,
// groups them into unpaid/upcoming/past and runs the local payment countdown.
package reservations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kinobilet/internal/logger"
	"kinobilet/internal/models"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

const fallbackCinemaName = "Cinema"

// SessionFetcher loads a session detail from the cinema API.
type SessionFetcher interface {
	MovieSession(ctx context.Context, sessionID int64) (*models.Session, error)
}

// Enricher joins reservations with session details and catalog names.
type Enricher struct {
	sessions    SessionFetcher
	clock       clockwork.Clock
	concurrency int
	onFallback  func(res models.Reservation, err error)
}

type EnricherOption func(*Enricher)

// WithClock replaces the wall clock used for the payment countdown.
func WithClock(clock clockwork.Clock) EnricherOption {
	return func(e *Enricher) { e.clock = clock }
}

// WithConcurrency bounds the number of session lookups in flight.
func WithConcurrency(n int) EnricherOption {
	return func(e *Enricher) { e.concurrency = n }
}

// WithFallbackHook is called for every reservation that fell back because its session lookup failed.
func WithFallbackHook(fn func(res models.Reservation, err error)) EnricherOption {
	return func(e *Enricher) { e.onFallback = fn }
}

func NewEnricher(sessions SessionFetcher, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		sessions:    sessions,
		clock:       clockwork.NewRealClock(),
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich returns one record per input reservation, in input order.
// Session lookups run concurrently; a failed lookup yields a fallback record and never aborts the others.
func (e *Enricher) Enrich(ctx context.Context, reservations []models.Reservation, movies []models.Movie, cinemas []models.Cinema, settings models.Settings) []models.EnrichedReservation {
	out := make([]models.EnrichedReservation, len(reservations))

	var g errgroup.Group
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}

	for i, res := range reservations {
		i, res := i, res
		g.Go(func() error {
			session, err := e.sessions.MovieSession(ctx, res.MovieSessionID)
			if err != nil {
				logger.WithContext(ctx).Error("Failed to load session for reservation",
					"error", err,
					"reservation_id", res.ID,
					"movie_session_id", res.MovieSessionID)
				if e.onFallback != nil {
					e.onFallback(res, err)
				}
				out[i] = Fallback(res)
				return nil
			}

			out[i] = enrichOne(res, session, movies, cinemas, settings, e.clock.Now())
			return nil
		})
	}

	// goroutines never return errors; per-record failures are folded into fallbacks
	_ = g.Wait()

	slog.Debug("Enriched reservations", "count", len(out))
	return out
}

func enrichOne(res models.Reservation, session *models.Session, movies []models.Movie, cinemas []models.Cinema, settings models.Settings, now time.Time) models.EnrichedReservation {
	timeLeft, expired := TimeLeft(res, settings, now)

	return models.EnrichedReservation{
		Reservation:   res,
		SessionDetail: session,
		MovieTitle:    movieTitle(movies, session.MovieID),
		CinemaName:    cinemaName(cinemas, session.CinemaID),
		TimeLeft:      timeLeft,
		IsExpired:     expired,
	}
}

// Fallback is the record used when the session detail of a reservation cannot be loaded.
func Fallback(res models.Reservation) models.EnrichedReservation {
	return models.EnrichedReservation{
		Reservation: res,
		MovieTitle:  fmt.Sprintf("Movie #%d", res.MovieSessionID),
		CinemaName:  fallbackCinemaName,
	}
}

// TimeLeft computes the remaining payment time in whole seconds.
// Paid reservations have no countdown.
func TimeLeft(res models.Reservation, settings models.Settings, now time.Time) (*int, bool) {
	if res.IsPaid {
		return nil, false
	}

	deadline := res.BookedAt.Add(settings.PaymentWindow())
	left := int(deadline.Sub(now) / time.Second)
	if left < 0 {
		left = 0
	}

	return &left, left <= 0
}

func movieTitle(movies []models.Movie, movieID int64) string {
	for _, m := range movies {
		if m.ID == movieID && m.Title != "" {
			return m.Title
		}
	}
	return fmt.Sprintf("Movie #%d", movieID)
}

func cinemaName(cinemas []models.Cinema, cinemaID int64) string {
	for _, c := range cinemas {
		if c.ID == cinemaID && c.Name != "" {
			return c.Name
		}
	}
	return fmt.Sprintf("Cinema #%d", cinemaID)
}
