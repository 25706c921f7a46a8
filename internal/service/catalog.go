package service

import (
	"context"
	"fmt"
	"time"

	"kinobilet/internal/cache"
	apperrors "kinobilet/internal/errors"
	"kinobilet/internal/models"
	"kinobilet/internal/showtimes"

	"github.com/jonboulle/clockwork"
)

// MovieDay - сеансы фильма за один день, по кинотеатрам
type MovieDay struct {
	Date    string                  `json:"date"`
	Cinemas []showtimes.CinemaGroup `json:"cinemas"`
}

type MovieDetails struct {
	Movie   models.Movie    `json:"movie"`
	Cinemas []models.Cinema `json:"cinemas"`
	Days    []MovieDay      `json:"days"`
}

// CinemaDay - сеансы кинотеатра за один день, по фильмам
type CinemaDay struct {
	Date   string                 `json:"date"`
	Movies []showtimes.MovieGroup `json:"movies"`
}

type CinemaDetails struct {
	Cinema models.Cinema  `json:"cinema"`
	Movies []models.Movie `json:"movies"`
	Days   []CinemaDay    `json:"days"`
}

// CatalogService serves movies, cinemas and their upcoming sessions.
type CatalogService struct {
	api      CinemaAPI
	cache    *cache.CatalogCache
	clock    clockwork.Clock
	location *time.Location
}

func NewCatalogService(api CinemaAPI, catalogCache *cache.CatalogCache, clock clockwork.Clock, location *time.Location) *CatalogService {
	return &CatalogService{
		api:      api,
		cache:    catalogCache,
		clock:    clock,
		location: location,
	}
}

func (s *CatalogService) Movies(ctx context.Context) ([]models.Movie, error) {
	if movies, ok := s.cache.Movies(ctx); ok {
		return movies, nil
	}

	movies, err := s.api.Movies(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.SetMovies(ctx, movies)
	return movies, nil
}

func (s *CatalogService) Cinemas(ctx context.Context) ([]models.Cinema, error) {
	if cinemas, ok := s.cache.Cinemas(ctx); ok {
		return cinemas, nil
	}

	cinemas, err := s.api.Cinemas(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.SetCinemas(ctx, cinemas)
	return cinemas, nil
}

// Movie returns a movie with its upcoming sessions grouped by day, then by cinema.
func (s *CatalogService) Movie(ctx context.Context, movieID int64) (*MovieDetails, error) {
	movies, err := s.Movies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get movies: %w", err)
	}

	movie, ok := findMovie(movies, movieID)
	if !ok {
		return nil, apperrors.ErrMovieNotFound
	}

	sessions, err := s.api.MovieSessions(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to get movie sessions: %w", err)
	}

	cinemas, err := s.Cinemas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get cinemas: %w", err)
	}

	upcoming := showtimes.Upcoming(sessions, s.clock.Now())
	days := make([]MovieDay, 0)
	for _, day := range showtimes.GroupByDate(upcoming, s.location) {
		days = append(days, MovieDay{Date: day.Date, Cinemas: showtimes.GroupByCinema(day.Sessions)})
	}

	return &MovieDetails{Movie: movie, Cinemas: cinemas, Days: days}, nil
}

// Cinema returns a cinema with its upcoming sessions grouped by day, then by movie.
func (s *CatalogService) Cinema(ctx context.Context, cinemaID int64) (*CinemaDetails, error) {
	cinemas, err := s.Cinemas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get cinemas: %w", err)
	}

	cinema, ok := findCinema(cinemas, cinemaID)
	if !ok {
		return nil, apperrors.ErrCinemaNotFound
	}

	sessions, err := s.api.CinemaSessions(ctx, cinemaID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cinema sessions: %w", err)
	}

	movies, err := s.Movies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get movies: %w", err)
	}

	upcoming := showtimes.Upcoming(sessions, s.clock.Now())
	days := make([]CinemaDay, 0)
	for _, day := range showtimes.GroupByDate(upcoming, s.location) {
		days = append(days, CinemaDay{Date: day.Date, Movies: showtimes.GroupByMovie(day.Sessions)})
	}

	return &CinemaDetails{Cinema: cinema, Movies: movies, Days: days}, nil
}

func findMovie(movies []models.Movie, id int64) (models.Movie, bool) {
	for _, m := range movies {
		if m.ID == id {
			return m, true
		}
	}
	return models.Movie{}, false
}

func findCinema(cinemas []models.Cinema, id int64) (models.Cinema, bool) {
	for _, c := range cinemas {
		if c.ID == id {
			return c, true
		}
	}
	return models.Cinema{}, false
}
