package service

import (
	"context"
	"log/slog"

	"kinobilet/internal/models"
	"kinobilet/internal/validation"
)

// AuthService validates credentials locally and forwards them to the cinema API.
// Storing the returned token is the caller's business.
type AuthService struct {
	api CinemaAPI
}

func NewAuthService(api CinemaAPI) *AuthService {
	return &AuthService{api: api}
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	resp, err := s.api.Login(ctx, req)
	if err != nil {
		return nil, err
	}

	slog.Info("User logged in", "username", req.Username)
	return resp, nil
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	resp, err := s.api.Register(ctx, models.RemoteRegisterRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("User registered", "username", req.Username)
	return resp, nil
}
