package reservations

import (
	"context"
	"fmt"

	"kinobilet/internal/models"

	"golang.org/x/sync/errgroup"
)

// Source provides the four inputs of a tickets screen load cycle.
type Source interface {
	MyReservations(ctx context.Context) ([]models.Reservation, error)
	Movies(ctx context.Context) ([]models.Movie, error)
	Cinemas(ctx context.Context) ([]models.Cinema, error)
	Settings(ctx context.Context) (*models.Settings, error)
}

// Loader fetches everything a tickets screen needs and enriches it.
type Loader struct {
	source   Source
	enricher *Enricher
}

func NewLoader(source Source, enricher *Enricher) *Loader {
	return &Loader{source: source, enricher: enricher}
}

// Load waits for all four fetches before enriching; if any of them fails nothing is returned.
func (l *Loader) Load(ctx context.Context) ([]models.EnrichedReservation, error) {
	var (
		reservations []models.Reservation
		movies       []models.Movie
		cinemas      []models.Cinema
		settings     *models.Settings
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		reservations, err = l.source.MyReservations(gctx)
		return err
	})
	g.Go(func() (err error) {
		movies, err = l.source.Movies(gctx)
		return err
	})
	g.Go(func() (err error) {
		cinemas, err = l.source.Cinemas(gctx)
		return err
	})
	g.Go(func() (err error) {
		settings, err = l.source.Settings(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}
	if settings == nil {
		return nil, fmt.Errorf("failed to load reservations: empty settings")
	}

	return l.enricher.Enrich(ctx, reservations, movies, cinemas, *settings), nil
}
