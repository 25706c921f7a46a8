package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kinobilet/internal/api"
	"kinobilet/internal/config"
	"kinobilet/internal/external"
	"kinobilet/internal/jobs"
	"kinobilet/internal/logger"
	"kinobilet/internal/validation"

	"github.com/jonboulle/clockwork"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.Load()

	// Инициализируем логгер
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// Проверяем, нужно ли запустить валидацию API кинотеатра
	if len(os.Args) > 1 && os.Args[1] == "validate" {
		os.Exit(runValidation(cfg))
	}

	// Создаем и настраиваем сервер
	server, err := api.NewServer(cfg)
	if err != nil {
		logger.Fatal("Failed to create server", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Закрываем брошенные экраны
	expirationJob := jobs.NewScreenExpirationJob(server.Services(), cfg.ScreenIdleTimeout, cfg.ScreenSweepInterval, clockwork.NewRealClock())
	expirationJob.Start(ctx)

	// Создаем HTTP сервер
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.GetRouter(),
		ReadHeaderTimeout: cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout,
	}

	// Запускаем сервер в отдельной горутине
	go func() {
		slog.Info("Starting server", "port", cfg.Port, "cinema_api", cfg.CinemaAPI.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			stop()
		}
	}()

	// Ждем сигнал для graceful shutdown
	<-ctx.Done()

	slog.Info("Shutting down server...")

	expirationJob.Stop()

	// Graceful shutdown с таймаутом
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	// Закрываем экраны и соединения
	if err := server.Cleanup(); err != nil {
		slog.Error("Error during cleanup", "error", err)
	}

	slog.Info("Server stopped")
}

// runValidation проверяет, что API кинотеатра отдает данные, нужные экранам
func runValidation(cfg *config.Config) int {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	slog.Info("Validating cinema API", "url", cfg.CinemaAPI.BaseURL)

	validator := validation.NewAPIValidator(external.NewCinemaClient(cfg.CinemaAPI))
	if err := validator.ValidateAll(ctx); err != nil {
		slog.Error("Cinema API validation failed", "error", err)
		return 1
	}

	slog.Info("Cinema API validation passed")
	return 0
}
