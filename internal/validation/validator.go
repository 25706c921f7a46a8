package validation

import (
	"context"
	"fmt"
	"log/slog"

	"kinobilet/internal/models"
)

// CatalogAPI is the part of the cinema API probed by the smoke check.
type CatalogAPI interface {
	Movies(ctx context.Context) ([]models.Movie, error)
	Cinemas(ctx context.Context) ([]models.Cinema, error)
	Settings(ctx context.Context) (*models.Settings, error)
}

// APIValidator - проверка доступности и формата ответов API кинотеатра
type APIValidator struct {
	api CatalogAPI
}

func NewAPIValidator(api CatalogAPI) *APIValidator {
	return &APIValidator{api: api}
}

// ValidateAll probes the endpoints the front-end depends on and checks the response shape.
func (v *APIValidator) ValidateAll(ctx context.Context) error {
	slog.Info("Validating cinema API")

	if err := v.validateMovies(ctx); err != nil {
		return fmt.Errorf("movies validation failed: %w", err)
	}

	if err := v.validateCinemas(ctx); err != nil {
		return fmt.Errorf("cinemas validation failed: %w", err)
	}

	if err := v.validateSettings(ctx); err != nil {
		return fmt.Errorf("settings validation failed: %w", err)
	}

	slog.Info("Cinema API is valid")
	return nil
}

func (v *APIValidator) validateMovies(ctx context.Context) error {
	movies, err := v.api.Movies(ctx)
	if err != nil {
		return fmt.Errorf("GET /movies: %w", err)
	}

	for _, m := range movies {
		if m.ID == 0 {
			return fmt.Errorf("GET /movies: movie %q has no id", m.Title)
		}
		if m.Title == "" {
			return fmt.Errorf("GET /movies: movie %d has no title", m.ID)
		}
	}

	slog.Info("GET /movies is valid", "count", len(movies))
	return nil
}

func (v *APIValidator) validateCinemas(ctx context.Context) error {
	cinemas, err := v.api.Cinemas(ctx)
	if err != nil {
		return fmt.Errorf("GET /cinemas: %w", err)
	}

	for _, c := range cinemas {
		if c.ID == 0 {
			return fmt.Errorf("GET /cinemas: cinema %q has no id", c.Name)
		}
	}

	slog.Info("GET /cinemas is valid", "count", len(cinemas))
	return nil
}

func (v *APIValidator) validateSettings(ctx context.Context) error {
	settings, err := v.api.Settings(ctx)
	if err != nil {
		return fmt.Errorf("GET /settings: %w", err)
	}

	if settings == nil || settings.BookingPaymentTimeSeconds <= 0 {
		return fmt.Errorf("GET /settings: expected positive bookingPaymentTimeSeconds")
	}

	slog.Info("GET /settings is valid", "booking_payment_time_seconds", settings.BookingPaymentTimeSeconds)
	return nil
}
