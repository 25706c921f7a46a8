package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "kinobilet/internal/errors"
	"kinobilet/internal/external"
	"kinobilet/internal/logger"
	"kinobilet/internal/service"
	"kinobilet/internal/validation"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		services: services,
	}
}

// handleServiceError переводит ошибку сервисного слоя в HTTP ответ
func handleServiceError(c *gin.Context, err error, msg string) {
	log := logger.WithContext(c.Request.Context())

	var verr *validation.Error
	var apiErr *external.APIError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": verr.Fields})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
	case errors.Is(err, apperrors.ErrScreenNotFound),
		errors.Is(err, apperrors.ErrReservationNotFound),
		errors.Is(err, apperrors.ErrMovieNotFound),
		errors.Is(err, apperrors.ErrCinemaNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrSeatOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrSeatUnavailable),
		errors.Is(err, apperrors.ErrPaymentInProgress),
		errors.Is(err, apperrors.ErrNotLoaded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		log.Warn(msg, "error", err, "upstream_status", apiErr.Status)
		c.JSON(status, gin.H{"error": external.UserMessage(err)})
	case errors.Is(err, external.ErrNoConnection):
		log.Error(msg, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": external.UserMessage(err)})
	default:
		log.Error(msg, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func paramInt64(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

func logRequest(c *gin.Context) *slog.Logger {
	return logger.WithContext(c.Request.Context())
}
