package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"kinobilet/internal/auth"
	"kinobilet/internal/logger"
	"kinobilet/internal/metrics"

	"github.com/gin-gonic/gin"
)

const (
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
	tokenKey     = "auth_token"
)

// CORS middleware для обработки CORS запросов
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}

		c.Next()
	}
}

// RequestID назначает запросу идентификатор (или берет его из заголовка) и кладет его в контекст
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = logger.NewRequestID()
		}

		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))

		c.Next()
	}
}

// BearerToken переносит токен посетителя из заголовка Authorization в контекст запроса.
// Отсутствие токена не ошибка: анонимный посетитель может смотреть каталог и схему зала.
func BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := auth.BearerToken(c.GetHeader("Authorization")); token != "" {
			c.Set(tokenKey, token)
			c.Request = c.Request.WithContext(auth.ContextWithToken(c.Request.Context(), token))
		}

		c.Next()
	}
}

// Logger middleware для структурированного логирования запросов
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Записываем время начала
		start := time.Now()

		// Выполняем запрос
		c.Next()

		// Логируем результат
		latency := time.Since(start)
		_, authorized := c.Get(tokenKey)

		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
			"has_token", authorized,
		}

		if id, ok := c.Get(requestIDKey); ok {
			logFields = append(logFields, "request_id", id)
		}

		if c.Writer.Status() >= 400 {
			if len(c.Errors) > 0 {
				logFields = append(logFields, "error", c.Errors.String())
			}
			slog.Error("Request completed with error", logFields...)
			return
		}

		slog.Debug("Request completed", logFields...)
	}
}

// Metrics записывает длительность запросов по шаблону маршрута
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Recovery middleware для восстановления после паники с детальным логированием
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		// Логируем панику с максимумом информации
		slog.Error("PANIC recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		)

		// Отправляем правильный HTTP ответ клиенту
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
	})
}
