// Package gateway is the REST client for the Tour Agency backend. It is
// the only component that talks to the network; payment input never
// appears in any of its request types.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/eIIka/tour-agency/internal/domain"
	"github.com/eIIka/tour-agency/pkg/logger"
)

// TokenSource supplies the bearer credential for outgoing requests. An
// empty credential means the request goes out unauthenticated.
type TokenSource interface {
	Credential() string
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
		tokens: tokens,
	}
}

// APIError is a non-2xx response from the backend carrying its message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AccountInfo struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  AccountInfo `json:"user"`
}

// RegisterRequest carries the common fields plus the role-specific ones:
// phone and passport number for clients, language for guides.
type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	Phone          string `json:"phone,omitempty"`
	PassportNumber string `json:"passportNumber,omitempty"`
	Language       string `json:"language,omitempty"`
}

// TourFilter narrows the tour listing. Zero fields are omitted from the
// query string.
type TourFilter struct {
	Country  string  `url:"country,omitempty"`
	Guide    string  `url:"guide,omitempty"`
	MaxPrice float64 `url:"maxPrice,omitempty"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AccountInfo, error) {
	var out AccountInfo
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTour(ctx context.Context, id int64) (*domain.Tour, error) {
	var out domain.Tour
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tour/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTours(ctx context.Context, filter TourFilter) ([]domain.Tour, error) {
	path := "/tour"
	values, err := query.Values(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tour filter: %w", err)
	}
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out []domain.Tour
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListToursByGuideID(ctx context.Context, guideID int64) ([]domain.Tour, error) {
	var out []domain.Tour
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tour/guide/id/%d", guideID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CurrentClient(ctx context.Context) (*domain.ClientProfile, error) {
	var out domain.ClientProfile
	if err := c.do(ctx, http.MethodGet, "/client/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CurrentGuide(ctx context.Context) (*domain.GuideProfile, error) {
	var out domain.GuideProfile
	if err := c.do(ctx, http.MethodGet, "/guide/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBooking issues the single finalize request of a booking flow.
// Backend rejections (4xx) are surfaced as domain.BookingRejectedError
// carrying the backend's message.
func (c *Client) CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	var out domain.Booking
	if err := c.do(ctx, http.MethodPost, "/booking", req, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
			return nil, &domain.BookingRejectedError{Message: apiErr.Message}
		}
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListClientBookings(ctx context.Context, clientID int64) ([]domain.Booking, error) {
	var out []domain.Booking
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/booking/client/%d", clientID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	op := method + " " + path

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Credential(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logger.DebugContext(ctx, "calling backend", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response for %s: %w", op, err)
		}
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		switch {
		case body.Message != "":
			apiErr.Message = body.Message
		case body.Error != "":
			apiErr.Message = body.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
