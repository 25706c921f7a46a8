package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListMovies - GET /api/movies
// Получить список фильмов
func (h *Handlers) ListMovies(c *gin.Context) {
	movies, err := h.services.Catalog.Movies(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to list movies")
		return
	}

	c.JSON(http.StatusOK, movies)
}

// GetMovie - GET /api/movies/:movieId
// Получить фильм и его предстоящие сеансы по дням
func (h *Handlers) GetMovie(c *gin.Context) {
	movieID, ok := paramInt64(c, "movieId")
	if !ok {
		return
	}

	details, err := h.services.Catalog.Movie(c.Request.Context(), movieID)
	if err != nil {
		handleServiceError(c, err, "Failed to get movie")
		return
	}

	c.JSON(http.StatusOK, details)
}

// ListCinemas - GET /api/cinemas
// Получить список кинотеатров
func (h *Handlers) ListCinemas(c *gin.Context) {
	cinemas, err := h.services.Catalog.Cinemas(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to list cinemas")
		return
	}

	c.JSON(http.StatusOK, cinemas)
}

// GetCinema - GET /api/cinemas/:cinemaId
// Получить кинотеатр и его предстоящие сеансы по дням
func (h *Handlers) GetCinema(c *gin.Context) {
	cinemaID, ok := paramInt64(c, "cinemaId")
	if !ok {
		return
	}

	details, err := h.services.Catalog.Cinema(c.Request.Context(), cinemaID)
	if err != nil {
		handleServiceError(c, err, "Failed to get cinema")
		return
	}

	c.JSON(http.StatusOK, details)
}
