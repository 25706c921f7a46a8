package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kinobilet/internal/booking"
	"kinobilet/internal/external"
	"kinobilet/internal/external/cinematest"
	"kinobilet/internal/middleware"
	"kinobilet/internal/models"
	"kinobilet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	api    *cinematest.Server
	router *gin.Engine
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := cinematest.New(t)
	client := external.NewCinemaClient(external.CinemaConfig{BaseURL: api.URL, Timeout: 5 * time.Second})
	services := service.NewServices(client, nil, nil, service.Options{Location: time.UTC})
	t.Cleanup(services.CloseAll)

	h := NewHandlers(services)

	r := gin.New()
	r.Use(middleware.BearerToken())

	// API routes
	routes := r.Group("/api")
	{
		routes.POST("/auth/login", h.Login)
		routes.POST("/auth/register", h.Register)

		routes.GET("/movies", h.ListMovies)
		routes.GET("/movies/:movieId", h.GetMovie)
		routes.GET("/cinemas", h.ListCinemas)
		routes.GET("/cinemas/:cinemaId", h.GetCinema)

		routes.POST("/sessions/:sessionId/booking-screens", h.OpenBookingScreen)
		routes.GET("/booking-screens/:screenId", h.GetBookingScreen)
		routes.POST("/booking-screens/:screenId/seats/toggle", h.ToggleSeat)
		routes.DELETE("/booking-screens/:screenId/seats", h.ClearSelection)
		routes.POST("/booking-screens/:screenId/submit", h.SubmitBooking)
		routes.DELETE("/booking-screens/:screenId", h.CloseBookingScreen)

		routes.POST("/ticket-screens", h.OpenTicketScreen)
		routes.GET("/ticket-screens/:screenId", h.GetTicketScreen)
		routes.POST("/ticket-screens/:screenId/reservations/:reservationId/pay", h.PayReservation)
		routes.DELETE("/ticket-screens/:screenId", h.CloseTicketScreen)
	}

	return &testEnv{api: api, router: r}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

var token = cinematest.Token(cinematest.Username)

func TestLogin(t *testing.T) {
	env := setupRouter(t)

	w := env.do(t, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Username: cinematest.Username, Password: cinematest.Password,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, token, decode[models.LoginResponse](t, w).Token)

	w = env.do(t, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Username: cinematest.Username, Password: "wrong-pass",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid username or password", decode[map[string]any](t, w)["error"])

	w = env.do(t, http.MethodPost, "/api/auth/login", models.LoginRequest{Username: "a b", Password: "x"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode[map[string]any](t, w)["fields"].(map[string]any)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password")
}

func TestRegister(t *testing.T) {
	env := setupRouter(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Username: "newbie", Password: "Passw0rd", ConfirmPassword: "Passw0rd",
	}, "")
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Username: cinematest.Username, Password: "Passw0rd", ConfirmPassword: "Passw0rd",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCatalog(t *testing.T) {
	env := setupRouter(t)

	w := env.do(t, http.MethodGet, "/api/movies", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Movie](t, w), 2)

	w = env.do(t, http.MethodGet, "/api/movies/1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	movie := decode[service.MovieDetails](t, w)
	assert.Equal(t, "Solaris", movie.Movie.Title)
	assert.Len(t, movie.Days, 1)

	w = env.do(t, http.MethodGet, "/api/cinemas/2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	cinema := decode[service.CinemaDetails](t, w)
	assert.Equal(t, "Kinopark", cinema.Cinema.Name)
	assert.Empty(t, cinema.Days)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/movies/77", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/cinemas/abc", nil, "").Code)
}

func TestBookingFlow(t *testing.T) {
	env := setupRouter(t)

	w := env.do(t, http.MethodPost, "/api/sessions/10/booking-screens", nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	view := decode[service.BookingView](t, w)
	assert.True(t, view.Authorized)
	base := "/api/booking-screens/" + view.ScreenID

	w = env.do(t, http.MethodPost, base+"/seats/toggle", models.ToggleSeatRequest{RowNumber: 1, SeatNumber: 1}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, base+"/seats/toggle", models.ToggleSeatRequest{RowNumber: 9, SeatNumber: 1}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, base+"/seats/toggle", models.ToggleSeatRequest{RowNumber: 0, SeatNumber: 1}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, base+"/seats/toggle", models.ToggleSeatRequest{RowNumber: 2, SeatNumber: 2}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []models.Seat{{RowNumber: 2, SeatNumber: 2}}, decode[service.BookingView](t, w).SelectedSeats)

	w = env.do(t, http.MethodPost, base+"/submit", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[service.SubmitResult](t, w)
	assert.Equal(t, booking.OutcomeBooked, result.Outcome)
	assert.Equal(t, booking.RouteMyTickets, result.Redirect)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, base, nil, token).Code)
}

func TestBookingScreenAnonymous(t *testing.T) {
	env := setupRouter(t)

	w := env.do(t, http.MethodPost, "/api/sessions/10/booking-screens", nil, "")
	require.Equal(t, http.StatusCreated, w.Code)
	view := decode[service.BookingView](t, w)
	base := "/api/booking-screens/" + view.ScreenID

	w = env.do(t, http.MethodPost, base+"/submit", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[service.SubmitResult](t, w)
	assert.Equal(t, booking.OutcomeNotAuthorized, result.Outcome)
	assert.Equal(t, booking.RouteLogin, result.Redirect)

	w = env.do(t, http.MethodDelete, base+"/seats", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, base, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, base, nil, "").Code)
}

func TestTicketsFlow(t *testing.T) {
	env := setupRouter(t)
	env.api.AddReservation(models.Reservation{
		ID: "r-1", MovieSessionID: 10, BookedAt: time.Now().Add(-time.Minute),
		Seats: []models.Seat{{RowNumber: 1, SeatNumber: 2}},
	})

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/ticket-screens", nil, "").Code)

	w := env.do(t, http.MethodPost, "/api/ticket-screens", nil, token)
	require.Equal(t, http.StatusAccepted, w.Code)
	view := decode[service.TicketsView](t, w)
	base := "/api/ticket-screens/" + view.ScreenID

	require.Eventually(t, func() bool {
		w := env.do(t, http.MethodGet, base, nil, token)
		return w.Code == http.StatusOK && decode[service.TicketsView](t, w).State == service.StateReady
	}, 5*time.Second, 10*time.Millisecond)

	w = env.do(t, http.MethodPost, base+"/reservations/r-1/pay", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[models.EnrichedReservation](t, w).IsPaid)

	w = env.do(t, http.MethodPost, base+"/reservations/missing/pay", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, base, nil, token).Code)
}

func TestPaymentDeclined(t *testing.T) {
	env := setupRouter(t)
	env.api.AddReservation(models.Reservation{ID: "r-1", MovieSessionID: 10, BookedAt: time.Now()})
	env.api.Lock()
	env.api.FailPayments = true
	env.api.Unlock()

	w := env.do(t, http.MethodPost, "/api/ticket-screens", nil, token)
	require.Equal(t, http.StatusAccepted, w.Code)
	base := "/api/ticket-screens/" + decode[service.TicketsView](t, w).ScreenID

	require.Eventually(t, func() bool {
		w := env.do(t, http.MethodGet, base, nil, token)
		return decode[service.TicketsView](t, w).State == service.StateReady
	}, 5*time.Second, 10*time.Millisecond)

	w = env.do(t, http.MethodPost, base+"/reservations/r-1/pay", nil, token)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, "Payment declined", decode[map[string]any](t, w)["error"])
}
