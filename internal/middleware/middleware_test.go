package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"kinobilet/internal/auth"
	"kinobilet/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(), RequestID(), BearerToken(), Metrics(), Logger(), CORS())
	r.GET("/probe", handler)
	r.GET("/panic", func(*gin.Context) { panic("boom") })
	return r
}

func TestBearerTokenReachesRequestContext(t *testing.T) {
	var token string
	var found bool
	r := setupRouter(func(c *gin.Context) {
		token, found = auth.TokenFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer abc.def")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, found)
	assert.Equal(t, "abc.def", token)
}

func TestAnonymousRequestHasNoToken(t *testing.T) {
	var found bool
	r := setupRouter(func(c *gin.Context) {
		_, found = auth.TokenFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.False(t, found)
}

func TestRequestID(t *testing.T) {
	var fromCtx string
	r := setupRouter(func(c *gin.Context) {
		fromCtx, _ = logger.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", fromCtx)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	r := setupRouter(func(c *gin.Context) {})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/probe", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestRecovery(t *testing.T) {
	r := setupRouter(func(c *gin.Context) {})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}
