package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OpenTicketScreen - POST /api/ticket-screens
// Открыть экран "Мои билеты" (загрузка идет в фоне)
func (h *Handlers) OpenTicketScreen(c *gin.Context) {
	view, err := h.services.Tickets.Open(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to open tickets screen")
		return
	}

	c.JSON(http.StatusAccepted, view)
}

// GetTicketScreen - GET /api/ticket-screens/:screenId
// Получить билеты по разделам с оставшимся временем на оплату
func (h *Handlers) GetTicketScreen(c *gin.Context) {
	view, err := h.services.Tickets.View(c.Request.Context(), c.Param("screenId"))
	if err != nil {
		handleServiceError(c, err, "Failed to get tickets screen")
		return
	}

	c.JSON(http.StatusOK, view)
}

// PayReservation - POST /api/ticket-screens/:screenId/reservations/:reservationId/pay
// Оплатить бронирование
func (h *Handlers) PayReservation(c *gin.Context) {
	res, err := h.services.Tickets.Pay(c.Request.Context(), c.Param("screenId"), c.Param("reservationId"))
	if err != nil {
		handleServiceError(c, err, "Failed to pay reservation")
		return
	}

	c.JSON(http.StatusOK, res)
}

// CloseTicketScreen - DELETE /api/ticket-screens/:screenId
// Закрыть экран "Мои билеты" и остановить таймер
func (h *Handlers) CloseTicketScreen(c *gin.Context) {
	if err := h.services.Tickets.Close(c.Param("screenId")); err != nil {
		handleServiceError(c, err, "Failed to close tickets screen")
		return
	}

	c.Status(http.StatusNoContent)
}
