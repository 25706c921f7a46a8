// Package cinematest runs an in-memory cinema API for tests.
package cinematest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"kinobilet/internal/models"

	"github.com/gin-gonic/gin"
)

// Seeded users.
const (
	Username = "viewer"
	Password = "Secret1"
)

// Server is a fake cinema API. Exported fields may be changed between requests while holding Lock.
type Server struct {
	URL string

	mu           sync.Mutex
	Movies       []models.Movie
	Cinemas      []models.Cinema
	Sessions     map[int64]*models.Session
	Reservations []models.Reservation
	Settings     models.Settings
	Users        map[string]string

	// FailSessions makes GET /movieSessions/:id answer 500 for these ids.
	FailSessions map[int64]bool
	// FailSettings makes GET /settings answer 500.
	FailSettings bool
	// FailPayments makes payments answer 402.
	FailPayments bool
	// PaymentGate, when set, holds every payment until it receives a value or is closed.
	PaymentGate chan struct{}
	// BookingGate holds POST /movieSessions/:id/bookings the same way.
	BookingGate chan struct{}
	// ReservationsGate holds GET /me/bookings the same way.
	ReservationsGate chan struct{}

	Now func() time.Time

	calls   map[string]int
	nextID  int
	httpSrv *httptest.Server
}

// New starts a seeded fake cinema API that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		Now:          time.Now,
		FailSessions: map[int64]bool{},
		Users:        map[string]string{Username: Password},
		Settings:     models.Settings{BookingPaymentTimeSeconds: 900},
		calls:        map[string]int{},
	}
	s.seed(time.Now())

	gin.SetMode(gin.TestMode)
	s.httpSrv = httptest.NewServer(s.router())
	s.URL = s.httpSrv.URL
	t.Cleanup(s.httpSrv.Close)

	return s
}

// Token is the bearer token issued to a user on login.
func Token(username string) string {
	return "token-" + username
}

func (s *Server) seed(now time.Time) {
	s.Movies = []models.Movie{
		{ID: 1, Title: "Solaris", Year: 1972, Rating: 8.1, PosterImage: "/posters/solaris.jpg", LengthMinutes: 167},
		{ID: 2, Title: "Stalker", Year: 1979, Rating: 8.2, PosterImage: "/posters/stalker.jpg", LengthMinutes: 162},
	}
	s.Cinemas = []models.Cinema{
		{ID: 1, Name: "Arman", Address: "Abay 1"},
		{ID: 2, Name: "Kinopark", Address: "Dostyk 5"},
	}
	s.Sessions = map[int64]*models.Session{
		10: {ID: 10, MovieID: 1, CinemaID: 1, StartTime: now.Add(2 * time.Hour),
			Seats: models.SeatGrid{Rows: 3, SeatsPerRow: 4}, BookedSeats: []models.Seat{{RowNumber: 1, SeatNumber: 1}}},
		11: {ID: 11, MovieID: 2, CinemaID: 1, StartTime: now.Add(26 * time.Hour),
			Seats: models.SeatGrid{Rows: 2, SeatsPerRow: 2}},
		12: {ID: 12, MovieID: 1, CinemaID: 2, StartTime: now.Add(-3 * time.Hour),
			Seats: models.SeatGrid{Rows: 2, SeatsPerRow: 2}},
	}
}

// Lock guards the exported fields.
func (s *Server) Lock()   { s.mu.Lock() }
func (s *Server) Unlock() { s.mu.Unlock() }

// Calls returns how many requests hit a route, e.g. "GET /movies".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// AddReservation stores a reservation owned by the seeded user.
func (s *Server) AddReservation(res models.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reservations = append(s.Reservations, res)
}

// Reservation returns a stored reservation by id.
func (s *Server) Reservation(id string) (models.Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, res := range s.Reservations {
		if res.ID == id {
			return res, true
		}
	}
	return models.Reservation{}, false
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		s.mu.Lock()
		s.calls[c.Request.Method+" "+c.FullPath()]++
		s.mu.Unlock()
		c.Next()
	})

	r.POST("/login", s.login)
	r.POST("/register", s.register)
	r.GET("/movies", s.movies)
	r.GET("/movies/:id/sessions", s.movieSessions)
	r.GET("/cinemas", s.cinemas)
	r.GET("/cinemas/:id/sessions", s.cinemaSessions)
	r.GET("/movieSessions/:id", s.session)
	r.GET("/settings", s.settings)

	private := r.Group("", s.requireToken)
	private.POST("/movieSessions/:id/bookings", s.book)
	private.GET("/me/bookings", s.myBookings)
	private.POST("/bookings/:id/payments", s.pay)

	return r
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, models.APIErrorBody{Message: msg})
}

func (s *Server) requireToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if header == "" || token == header || token != Token(Username) {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	c.Next()
}

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	password, ok := s.Users[req.Username]
	s.mu.Unlock()

	if !ok || password != req.Password {
		fail(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{ID: "1", Username: req.Username, Token: Token(req.Username)})
}

func (s *Server) register(c *gin.Context) {
	var req models.RemoteRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.Users[req.Username]; exists {
		fail(c, http.StatusConflict, "User already exists")
		return
	}
	s.Users[req.Username] = req.Password

	c.JSON(http.StatusCreated, models.RegisterResponse{ID: strconv.Itoa(len(s.Users)), Username: req.Username})
}

func (s *Server) movies(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.Movies)
}

func (s *Server) cinemas(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.Cinemas)
}

func (s *Server) movieSessions(c *gin.Context) {
	s.listSessions(c, func(session *models.Session, id int64) bool { return session.MovieID == id })
}

func (s *Server) cinemaSessions(c *gin.Context) {
	s.listSessions(c, func(session *models.Session, id int64) bool { return session.CinemaID == id })
}

func (s *Server) listSessions(c *gin.Context, match func(*models.Session, int64) bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.SessionSummary{}
	for _, session := range s.Sessions {
		if match(session, id) {
			out = append(out, models.SessionSummary{
				ID: session.ID, MovieID: session.MovieID, CinemaID: session.CinemaID, StartTime: session.StartTime,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	c.JSON(http.StatusOK, out)
}

func (s *Server) session(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSessions[id] {
		fail(c, http.StatusInternalServerError, "Internal error")
		return
	}
	session, ok := s.Sessions[id]
	if !ok {
		fail(c, http.StatusNotFound, "Session not found")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) settings(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSettings {
		fail(c, http.StatusInternalServerError, "Internal error")
		return
	}
	c.JSON(http.StatusOK, s.Settings)
}

func (s *Server) book(c *gin.Context) {
	if !s.wait(c, func() chan struct{} { return s.BookingGate }) {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid id")
		return
	}

	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Seats) == 0 {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.Sessions[id]
	if !ok {
		fail(c, http.StatusNotFound, "Session not found")
		return
	}
	for _, seat := range req.Seats {
		for _, booked := range session.BookedSeats {
			if seat == booked {
				fail(c, http.StatusConflict, fmt.Sprintf("Seat %d-%d is already booked", seat.RowNumber, seat.SeatNumber))
				return
			}
		}
	}

	s.nextID++
	res := models.Reservation{
		ID:             fmt.Sprintf("res-%d", s.nextID),
		UserID:         1,
		MovieSessionID: id,
		SessionID:      id,
		BookedAt:       s.Now(),
		Seats:          req.Seats,
	}
	session.BookedSeats = append(session.BookedSeats, req.Seats...)
	s.Reservations = append(s.Reservations, res)

	c.JSON(http.StatusCreated, models.BookingResponse{ID: res.ID, MovieSessionID: id, UserID: 1})
}

func (s *Server) myBookings(c *gin.Context) {
	if !s.wait(c, func() chan struct{} { return s.ReservationsGate }) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]models.Reservation{}, s.Reservations...)
	c.JSON(http.StatusOK, out)
}

func (s *Server) pay(c *gin.Context) {
	if !s.wait(c, func() chan struct{} { return s.PaymentGate }) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailPayments {
		fail(c, http.StatusPaymentRequired, "Payment declined")
		return
	}

	for i := range s.Reservations {
		if s.Reservations[i].ID == c.Param("id") {
			s.Reservations[i].IsPaid = true
			c.Status(http.StatusNoContent)
			return
		}
	}
	fail(c, http.StatusNotFound, "Booking not found")
}

// wait blocks on the gate returned by pick, if any. It reports false when the caller went away.
func (s *Server) wait(c *gin.Context, pick func() chan struct{}) bool {
	s.mu.Lock()
	gate := pick()
	s.mu.Unlock()

	if gate == nil {
		return true
	}

	select {
	case <-gate:
		return true
	case <-c.Request.Context().Done():
		return false
	}
}
