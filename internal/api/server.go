package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"kinobilet/internal/cache"
	"kinobilet/internal/config"
	"kinobilet/internal/external"
	"kinobilet/internal/handlers"
	"kinobilet/internal/messaging"
	"kinobilet/internal/middleware"
	"kinobilet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server представляет HTTP сервер BFF
type Server struct {
	router   *gin.Engine
	config   *config.Config
	cache    *cache.CatalogCache
	nats     *messaging.NATSClient
	services *service.Services
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config) (*Server, error) {
	// Устанавливаем режим Gin
	gin.SetMode(cfg.GinMode)

	// Кэш каталога (опционально)
	catalogCache, err := cache.NewCatalogCache(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to catalog cache: %w", err)
	}

	// Подключаемся к NATS (без NATS_URL события не публикуются)
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		_ = catalogCache.Close()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	// Клиент API кинотеатра
	cinemaClient := external.NewCinemaClient(cfg.CinemaAPI)

	// Создаем сервисы
	services := service.NewServices(cinemaClient, catalogCache, natsClient, service.Options{
		EnrichConcurrency: cfg.EnrichConcurrency,
	})

	return newServer(cfg, services, catalogCache, natsClient), nil
}

// NewServerWithServices собирает сервер поверх готовых сервисов (используется в тестах)
func NewServerWithServices(cfg *config.Config, services *service.Services) *Server {
	return newServer(cfg, services, nil, nil)
}

func newServer(cfg *config.Config, services *service.Services, catalogCache *cache.CatalogCache, natsClient *messaging.NATSClient) *Server {
	router := gin.New()

	// Применяем middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.BearerToken())
	router.Use(middleware.Metrics())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())

	server := &Server{
		router:   router,
		config:   cfg,
		cache:    catalogCache,
		nats:     natsClient,
		services: services,
	}

	// Настраиваем роуты
	server.setupRoutes()

	return server
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services)

	api := s.router.Group("/api")
	{
		// Auth endpoints
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.Login)
			auth.POST("/register", h.Register)
		}

		// Catalog endpoints
		api.GET("/movies", h.ListMovies)
		api.GET("/movies/:movieId", h.GetMovie)
		api.GET("/cinemas", h.ListCinemas)
		api.GET("/cinemas/:cinemaId", h.GetCinema)

		// Booking screen endpoints
		api.POST("/sessions/:sessionId/booking-screens", h.OpenBookingScreen)
		bookingScreens := api.Group("/booking-screens/:screenId")
		{
			bookingScreens.GET("", h.GetBookingScreen)
			bookingScreens.POST("/seats/toggle", h.ToggleSeat)
			bookingScreens.DELETE("/seats", h.ClearSelection)
			bookingScreens.POST("/submit", h.SubmitBooking)
			bookingScreens.DELETE("", h.CloseBookingScreen)
		}

		// Tickets screen endpoints
		api.POST("/ticket-screens", h.OpenTicketScreen)
		ticketScreens := api.Group("/ticket-screens/:screenId")
		{
			ticketScreens.GET("", h.GetTicketScreen)
			ticketScreens.POST("/reservations/:reservationId/pay", h.PayReservation)
			ticketScreens.DELETE("", h.CloseTicketScreen)
		}
	}

	// Health check endpoint
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "kinobilet-bff",
		"version": "1.0.0",
		"events":  s.nats.Enabled(),
		"cache":   s.cache != nil,
	})
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Services возвращает сервисы (для фоновых задач)
func (s *Server) Services() *service.Services {
	return s.services
}

// Cleanup закрывает экраны и соединения
func (s *Server) Cleanup() error {
	s.services.CloseAll()

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			slog.Error("Error closing catalog cache", "error", err)
			return err
		}
	}

	return nil
}
