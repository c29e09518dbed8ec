// REST client for the catalog backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/cinedex/internal/models"
	"github.com/desertthunder/cinedex/internal/shared"
	"golang.org/x/time/rate"
)

const defaultBaseURL string = "http://127.0.0.1:4000/"

// APIService implements [AuthService] and [MovieService] against the catalog backend.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewAPIService creates a new API service instance.
//
// A nil client falls back to [http.DefaultClient] and a nil limiter never waits.
func NewAPIService(baseURL string, client *http.Client, limiter *rate.Limiter) *APIService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}

	return &APIService{
		baseURL:    baseURL,
		httpClient: client,
		limiter:    limiter,
	}
}

// NewLimiter returns a limiter allowing perSecond requests with a small burst.
// Non-positive rates disable limiting.
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := max(int(perSecond), 1)
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// WithClient returns a copy of the service that sends requests through client.
// The copy shares the rate limiter.
func (a *APIService) WithClient(client *http.Client) *APIService {
	return NewAPIService(a.baseURL, client, a.limiter)
}

// BaseURL returns the backend root the service talks to.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (status %d): %s", shared.ErrAPIRequest, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: status %d", shared.ErrAPIRequest, e.StatusCode)
}

// Unwrap exposes the sentinel errors matching the status code.
func (e *APIError) Unwrap() []error {
	errs := []error{shared.ErrAPIRequest}
	switch e.StatusCode {
	case http.StatusUnauthorized:
		errs = append(errs, shared.ErrAuthFailed)
	case http.StatusNotFound:
		errs = append(errs, shared.ErrRecordNotFound)
	}
	return errs
}

// StatusCode extracts the HTTP status of an [*APIError], or 0 for any other error.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func (a *APIService) endpoint(path string, query url.Values) string {
	u := strings.TrimRight(a.baseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (a *APIService) doRequest(ctx context.Context, method, path string, query url.Values, body, result any) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if result == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrDecodeResponse, err)
	}
	return nil
}

// errorMessage pulls a human readable message out of an error body.
func errorMessage(body []byte) string {
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		for _, msg := range []string{errResp.Message, errResp.Error, errResp.Detail} {
			if msg != "" {
				return msg
			}
		}
	}
	return strings.TrimSpace(string(body))
}

// Login authenticates an existing account.
//
// Calls POST /api/auth/login.
func (a *APIService) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	payload := map[string]string{"email": email, "password": password}
	return a.authenticate(ctx, "/api/auth/login", payload)
}

// Signup creates an account.
//
// Calls POST /api/auth/signup.
func (a *APIService) Signup(ctx context.Context, name, email, password string) (*models.AuthResult, error) {
	payload := map[string]string{"name": name, "email": email, "password": password}
	return a.authenticate(ctx, "/api/auth/signup", payload)
}

func (a *APIService) authenticate(ctx context.Context, path string, payload any) (*models.AuthResult, error) {
	var result models.AuthResult
	if err := a.doRequest(ctx, http.MethodPost, path, nil, payload, &result); err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDecodeResponse, err)
	}
	return &result, nil
}

// ListMovies returns one page of records.
//
// Calls GET /api/movies?page&limit&search.
func (a *APIService) ListMovies(ctx context.Context, q models.ListQuery) ([]models.Movie, error) {
	var raw json.RawMessage
	if err := a.doRequest(ctx, http.MethodGet, "/api/movies", q.Values(), nil, &raw); err != nil {
		return nil, err
	}
	return decodeMovieList(raw)
}

// AllMovies returns every record without pagination.
//
// Calls GET /api/movies.
func (a *APIService) AllMovies(ctx context.Context) ([]models.Movie, error) {
	var raw json.RawMessage
	if err := a.doRequest(ctx, http.MethodGet, "/api/movies", nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeMovieList(raw)
}

// decodeMovieList accepts {movies:[...]}, {data:[...]} or a bare array.
// An empty body yields an empty list.
func decodeMovieList(raw json.RawMessage) ([]models.Movie, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []models.Movie{}, nil
	}

	if raw[0] == '[' {
		var movies []models.Movie
		if err := json.Unmarshal(raw, &movies); err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrDecodeResponse, err)
		}
		return movies, nil
	}

	var envelope struct {
		Movies []models.Movie `json:"movies"`
		Data   []models.Movie `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrDecodeResponse, err)
	}

	switch {
	case envelope.Movies != nil:
		return envelope.Movies, nil
	case envelope.Data != nil:
		return envelope.Data, nil
	default:
		return []models.Movie{}, nil
	}
}

// decodeMovie accepts {movie:{...}} or a bare record.
func decodeMovie(raw json.RawMessage) (*models.Movie, error) {
	var envelope struct {
		Movie *models.Movie `json:"movie"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrDecodeResponse, err)
	}
	if envelope.Movie != nil {
		return envelope.Movie, nil
	}

	var movie models.Movie
	if err := json.Unmarshal(raw, &movie); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrDecodeResponse, err)
	}
	return &movie, nil
}

// CreateMovie sends the textual fields of a new record.
//
// Calls POST /api/movies. The returned record carries the server-assigned id.
func (a *APIService) CreateMovie(ctx context.Context, fields models.MovieFields) (*models.Movie, error) {
	var raw json.RawMessage
	if err := a.doRequest(ctx, http.MethodPost, "/api/movies", nil, fields, &raw); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: empty create response", shared.ErrDecodeResponse)
	}
	return decodeMovie(raw)
}

// UpdateMovie replaces the textual fields of record id.
//
// Calls PUT /api/movies/{id}. A response without a body yields the submitted fields.
func (a *APIService) UpdateMovie(ctx context.Context, id models.ID, fields models.MovieFields) (*models.Movie, error) {
	var raw json.RawMessage
	path := "/api/movies/" + url.PathEscape(id.String())
	if err := a.doRequest(ctx, http.MethodPut, path, nil, fields, &raw); err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return &models.Movie{
			ID: id, Title: fields.Title, Type: fields.Type, Director: fields.Director,
			Budget: fields.Budget, Location: fields.Location, Duration: fields.Duration, Year: fields.Year,
		}, nil
	}
	return decodeMovie(raw)
}

// DeleteMovie removes record id.
//
// Calls DELETE /api/movies/{id}. Any 2xx status counts as success.
func (a *APIService) DeleteMovie(ctx context.Context, id models.ID) error {
	path := "/api/movies/" + url.PathEscape(id.String())
	return a.doRequest(ctx, http.MethodDelete, path, nil, nil, nil)
}
