package handlers

import (
	"net/http"

	"kinobilet/internal/models"
	"kinobilet/internal/validation"

	"github.com/gin-gonic/gin"
)

// OpenBookingScreen - POST /api/sessions/:sessionId/booking-screens
// Открыть экран бронирования сеанса
func (h *Handlers) OpenBookingScreen(c *gin.Context) {
	sessionID, ok := paramInt64(c, "sessionId")
	if !ok {
		return
	}

	view, err := h.services.Bookings.Open(c.Request.Context(), sessionID)
	if err != nil {
		handleServiceError(c, err, "Failed to open booking screen")
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetBookingScreen - GET /api/booking-screens/:screenId
// Получить схему зала и текущий выбор
func (h *Handlers) GetBookingScreen(c *gin.Context) {
	view, err := h.services.Bookings.View(c.Request.Context(), c.Param("screenId"))
	if err != nil {
		handleServiceError(c, err, "Failed to get booking screen")
		return
	}

	c.JSON(http.StatusOK, view)
}

// ToggleSeat - POST /api/booking-screens/:screenId/seats/toggle
// Выбрать место или снять выбор
func (h *Handlers) ToggleSeat(c *gin.Context) {
	var req models.ToggleSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validation.Struct(req); err != nil {
		handleServiceError(c, err, "Invalid seat")
		return
	}

	view, err := h.services.Bookings.Toggle(c.Request.Context(), c.Param("screenId"), req.RowNumber, req.SeatNumber)
	if err != nil {
		handleServiceError(c, err, "Failed to toggle seat")
		return
	}

	c.JSON(http.StatusOK, view)
}

// ClearSelection - DELETE /api/booking-screens/:screenId/seats
// Сбросить выбранные места
func (h *Handlers) ClearSelection(c *gin.Context) {
	view, err := h.services.Bookings.Clear(c.Request.Context(), c.Param("screenId"))
	if err != nil {
		handleServiceError(c, err, "Failed to clear selection")
		return
	}

	c.JSON(http.StatusOK, view)
}

// SubmitBooking - POST /api/booking-screens/:screenId/submit
// Забронировать выбранные места
func (h *Handlers) SubmitBooking(c *gin.Context) {
	result, err := h.services.Bookings.Submit(c.Request.Context(), c.Param("screenId"))
	if err != nil {
		handleServiceError(c, err, "Failed to submit booking")
		return
	}

	logRequest(c).Info("Booking submitted", "screen_id", c.Param("screenId"), "outcome", result.Outcome)
	c.JSON(http.StatusOK, result)
}

// CloseBookingScreen - DELETE /api/booking-screens/:screenId
// Закрыть экран бронирования
func (h *Handlers) CloseBookingScreen(c *gin.Context) {
	if err := h.services.Bookings.Close(c.Param("screenId")); err != nil {
		handleServiceError(c, err, "Failed to close booking screen")
		return
	}

	c.Status(http.StatusNoContent)
}
