package validation

import (
	"context"
	"errors"
	"testing"

	"kinobilet/internal/models"

	"github.com/stretchr/testify/assert"
)

type fakeCatalogAPI struct {
	movies   []models.Movie
	cinemas  []models.Cinema
	settings *models.Settings
	err      error
}

func (f *fakeCatalogAPI) Movies(context.Context) ([]models.Movie, error) {
	return f.movies, f.err
}

func (f *fakeCatalogAPI) Cinemas(context.Context) ([]models.Cinema, error) {
	return f.cinemas, nil
}

func (f *fakeCatalogAPI) Settings(context.Context) (*models.Settings, error) {
	return f.settings, nil
}

func TestValidateAll(t *testing.T) {
	api := &fakeCatalogAPI{
		movies:   []models.Movie{{ID: 1, Title: "Solaris"}},
		cinemas:  []models.Cinema{{ID: 1, Name: "Arman"}},
		settings: &models.Settings{BookingPaymentTimeSeconds: 900},
	}
	assert.NoError(t, NewAPIValidator(api).ValidateAll(context.Background()))
}

func TestValidateAllFailures(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeCatalogAPI
		want string
	}{
		{
			name: "movies unreachable",
			api:  &fakeCatalogAPI{err: errors.New("no connection to server")},
			want: "movies validation failed",
		},
		{
			name: "untitled movie",
			api:  &fakeCatalogAPI{movies: []models.Movie{{ID: 3}}},
			want: "movie 3 has no title",
		},
		{
			name: "cinema without id",
			api:  &fakeCatalogAPI{cinemas: []models.Cinema{{Name: "Arman"}}},
			want: "cinemas validation failed",
		},
		{
			name: "zero payment window",
			api:  &fakeCatalogAPI{settings: &models.Settings{}},
			want: "bookingPaymentTimeSeconds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIValidator(tt.api).ValidateAll(context.Background())
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
