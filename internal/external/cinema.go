package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"kinobilet/internal/auth"
	"kinobilet/internal/models"
)

const defaultTimeout = 10 * time.Second

var (
	// ErrNoConnection covers transport failures and timeouts: the request left but nothing usable came back.
	ErrNoConnection = errors.New("no connection to server")
	// ErrRequestMisconfigured means the request could not be built at all.
	ErrRequestMisconfigured = errors.New("request misconfigured")
)

// APIError is a non-2xx answer of the cinema API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// CinemaClient talks to the remote cinema API. It is the only place that knows URLs and wire formats.
type CinemaClient struct {
	baseURL    string
	httpClient *http.Client
}

type CinemaConfig struct {
	BaseURL string
	Timeout time.Duration
}

func NewCinemaClient(cfg CinemaConfig) *CinemaClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	return &CinemaClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// do sends a JSON request and decodes a JSON answer into out (when out is not nil).
// The bearer token is taken from ctx when present.
func (c *CinemaClient) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", errors.Join(ErrRequestMisconfigured, err))
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", errors.Join(ErrRequestMisconfigured, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token, ok := auth.TokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
			return fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		return fmt.Errorf("%s %s: %w", method, path, errors.Join(ErrNoConnection, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body models.APIErrorBody
	if raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil && len(raw) > 0 {
		if json.Unmarshal(raw, &body) == nil {
			apiErr.Message = body.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}

	return apiErr
}

func (c *CinemaClient) Register(ctx context.Context, req models.RemoteRegisterRequest) (*models.RegisterResponse, error) {
	var result models.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/register", req, &result); err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}
	return &result, nil
}

func (c *CinemaClient) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var result models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/login", req, &result); err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	return &result, nil
}

func (c *CinemaClient) Movies(ctx context.Context) ([]models.Movie, error) {
	var movies []models.Movie
	if err := c.do(ctx, http.MethodGet, "/movies", nil, &movies); err != nil {
		return nil, fmt.Errorf("failed to get movies: %w", err)
	}
	return movies, nil
}

func (c *CinemaClient) MovieSessions(ctx context.Context, movieID int64) ([]models.SessionSummary, error) {
	var sessions []models.SessionSummary
	if err := c.do(ctx, http.MethodGet, "/movies/"+strconv.FormatInt(movieID, 10)+"/sessions", nil, &sessions); err != nil {
		return nil, fmt.Errorf("failed to get movie sessions: %w", err)
	}
	return sessions, nil
}

func (c *CinemaClient) Cinemas(ctx context.Context) ([]models.Cinema, error) {
	var cinemas []models.Cinema
	if err := c.do(ctx, http.MethodGet, "/cinemas", nil, &cinemas); err != nil {
		return nil, fmt.Errorf("failed to get cinemas: %w", err)
	}
	return cinemas, nil
}

func (c *CinemaClient) CinemaSessions(ctx context.Context, cinemaID int64) ([]models.SessionSummary, error) {
	var sessions []models.SessionSummary
	if err := c.do(ctx, http.MethodGet, "/cinemas/"+strconv.FormatInt(cinemaID, 10)+"/sessions", nil, &sessions); err != nil {
		return nil, fmt.Errorf("failed to get cinema sessions: %w", err)
	}
	return sessions, nil
}

// MovieSession returns the session detail including its seat map.
func (c *CinemaClient) MovieSession(ctx context.Context, sessionID int64) (*models.Session, error) {
	var session models.Session
	if err := c.do(ctx, http.MethodGet, "/movieSessions/"+strconv.FormatInt(sessionID, 10), nil, &session); err != nil {
		return nil, fmt.Errorf("failed to get movie session %d: %w", sessionID, err)
	}
	return &session, nil
}

// CreateReservation books seats of a session. Requires a bearer token in ctx.
func (c *CinemaClient) CreateReservation(ctx context.Context, sessionID int64, req models.BookingRequest) (*models.BookingResponse, error) {
	var result models.BookingResponse
	path := "/movieSessions/" + strconv.FormatInt(sessionID, 10) + "/bookings"
	if err := c.do(ctx, http.MethodPost, path, req, &result); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	return &result, nil
}

// MyReservations lists reservations of the token owner.
func (c *CinemaClient) MyReservations(ctx context.Context) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := c.do(ctx, http.MethodGet, "/me/bookings", nil, &reservations); err != nil {
		return nil, fmt.Errorf("failed to get reservations: %w", err)
	}
	return reservations, nil
}

func (c *CinemaClient) Settings(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	if err := c.do(ctx, http.MethodGet, "/settings", nil, &settings); err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &settings, nil
}

// PayReservation submits the payment for a reservation. Requires a bearer token in ctx.
func (c *CinemaClient) PayReservation(ctx context.Context, reservationID string) error {
	path := "/bookings/" + url.PathEscape(reservationID) + "/payments"
	if err := c.do(ctx, http.MethodPost, path, models.PaymentRequest{BookingID: reservationID}, nil); err != nil {
		return fmt.Errorf("failed to pay reservation: %w", err)
	}
	return nil
}

// UserMessage turns an error of this package into text that can be shown to a visitor.
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrNoConnection):
		return ErrNoConnection.Error()
	case errors.Is(err, ErrRequestMisconfigured):
		return ErrRequestMisconfigured.Error()
	default:
		return err.Error()
	}
}
