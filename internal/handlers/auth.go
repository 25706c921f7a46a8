package handlers

import (
	"net/http"

	"kinobilet/internal/models"

	"github.com/gin-gonic/gin"
)

// Login - POST /api/auth/login
// Войти и получить токен
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.services.Auth.Login(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "Failed to login")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Register - POST /api/auth/register
// Зарегистрировать пользователя
func (h *Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.services.Auth.Register(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "Failed to register")
		return
	}

	c.JSON(http.StatusCreated, resp)
}
