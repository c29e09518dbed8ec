package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/cinedex/internal/models"
	"github.com/desertthunder/cinedex/internal/shared"
	tu "github.com/desertthunder/cinedex/internal/testing"
	"golang.org/x/time/rate"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *APIService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewAPIService(server.URL+"/", nil, nil)
}

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com/", customClient, nil)

			if srv.BaseURL() != "http://example.com/" {
				t.Errorf("expected baseURL 'http://example.com/', got %s", srv.BaseURL())
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
			if srv.limiter == nil {
				t.Error("expected default limiter")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", nil, nil)

			if srv.baseURL != defaultBaseURL {
				t.Errorf("expected default baseURL %s, got %s", defaultBaseURL, srv.baseURL)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("WithClient shares limiter", func(t *testing.T) {
			limiter := NewLimiter(5)
			srv := NewAPIService("http://example.com/", nil, limiter)
			other := &http.Client{}
			derived := srv.WithClient(other)

			if derived.httpClient != other {
				t.Error("expected derived service to use new client")
			}
			if derived.limiter != limiter {
				t.Error("expected derived service to share limiter")
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("original service must keep its client")
			}
		})
	})

	t.Run("NewLimiter", func(t *testing.T) {
		if l := NewLimiter(0); l.Limit() != rate.Inf {
			t.Errorf("expected unlimited limiter, got %v", l.Limit())
		}
		l := NewLimiter(10)
		if l.Limit() != rate.Limit(10) || l.Burst() != 10 {
			t.Errorf("unexpected limiter: limit=%v burst=%d", l.Limit(), l.Burst())
		}
		if NewLimiter(0.5).Burst() != 1 {
			t.Error("expected burst of at least 1")
		}
	})

	t.Run("endpoint joins base URL and path", func(t *testing.T) {
		for _, base := range []string{"http://h:4000", "http://h:4000/", "http://h:4000//"} {
			srv := NewAPIService(base, nil, nil)
			if got := srv.endpoint("/api/movies", nil); got != "http://h:4000/api/movies" {
				t.Errorf("endpoint(%q) = %s", base, got)
			}
		}
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if r.Header.Get("Authorization") != "" {
					t.Error("login must not send an Authorization header")
				}

				var body map[string]string
				json.NewDecoder(r.Body).Decode(&body)
				if body["email"] != "a@b.com" || body["password"] != "pw" {
					t.Errorf("unexpected body: %v", body)
				}

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"token":"T1","user":{"id":7,"email":"a@b.com","name":"A"}}`))
			})

			result, err := srv.Login(context.Background(), "a@b.com", "pw")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.Token != "T1" || result.User.ID != "7" {
				t.Errorf("unexpected result: %+v", result)
			}
		})

		t.Run("Unauthorized", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"message":"Invalid credentials"}`))
			})

			_, err := srv.Login(context.Background(), "a@b.com", "wrong")
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if StatusCode(err) != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", StatusCode(err))
			}
			if !strings.Contains(err.Error(), "Invalid credentials") {
				t.Errorf("expected server message in error, got %v", err)
			}
		})

		t.Run("Missing Token", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"user":{"id":7}}`))
			})

			_, err := srv.Login(context.Background(), "a@b.com", "pw")
			if !errors.Is(err, shared.ErrDecodeResponse) {
				t.Errorf("expected ErrDecodeResponse, got %v", err)
			}
		})
	})

	t.Run("Signup", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/auth/signup" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["name"] != "A" {
				t.Errorf("expected name in body, got %v", body)
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"token":"T2","user":{"id":"u-1","email":"a@b.com","name":"A"}}`))
		})

		result, err := srv.Signup(context.Background(), "A", "a@b.com", "pw")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Token != "T2" || result.User.ID != "u-1" {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("ListMovies", func(t *testing.T) {
		t.Run("Sends query parameters", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("page") != "2" || q.Get("limit") != "10" || q.Get("search") != "Inception" {
					t.Errorf("unexpected query: %s", r.URL.RawQuery)
				}
				w.Write([]byte(`{"movies":[{"id":1,"title":"Inception","type":"Movie"}]}`))
			})

			movies, err := srv.ListMovies(context.Background(), models.ListQuery{Page: 2, PageSize: 10, Search: "Inception"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(movies) != 1 || movies[0].Title != "Inception" || movies[0].ID != "1" {
				t.Errorf("unexpected movies: %+v", movies)
			}
		})

		tc := []struct {
			name string
			body string
			want int
		}{
			{name: "movies envelope", body: `{"movies":[{"id":1},{"id":2}]}`, want: 2},
			{name: "data envelope", body: `{"data":[{"id":1}]}`, want: 1},
			{name: "bare array", body: `[{"id":1},{"id":2},{"id":3}]`, want: 3},
			{name: "empty object", body: `{}`, want: 0},
			{name: "empty body", body: ``, want: 0},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte(tt.body))
				})

				movies, err := srv.ListMovies(context.Background(), models.ListQuery{Page: 1, PageSize: 10})
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if movies == nil || len(movies) != tt.want {
					t.Errorf("expected %d movies, got %v", tt.want, movies)
				}
			})
		}

		t.Run("Invalid JSON", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{not json`))
			})

			_, err := srv.ListMovies(context.Background(), models.ListQuery{Page: 1, PageSize: 10})
			if !errors.Is(err, shared.ErrDecodeResponse) {
				t.Errorf("expected ErrDecodeResponse, got %v", err)
			}
		})
	})

	t.Run("AllMovies omits pagination", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.RawQuery != "" {
				t.Errorf("expected no query, got %s", r.URL.RawQuery)
			}
			w.Write([]byte(`[{"id":42,"title":"Dune"}]`))
		})

		movies, err := srv.AllMovies(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(movies) != 1 || movies[0].ID != "42" {
			t.Errorf("unexpected movies: %+v", movies)
		}
	})

	t.Run("CreateMovie", func(t *testing.T) {
		fields := models.MovieFields{Title: "Dune", Type: models.TypeMovie, Director: "Villeneuve", Budget: "$165M", Location: "Jordan", Duration: "155 min", Year: "2021"}

		t.Run("Sends textual fields only", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				var body map[string]any
				json.NewDecoder(r.Body).Decode(&body)
				if _, ok := body["image"]; ok {
					t.Error("create must not send an image")
				}
				if body["title"] != "Dune" || body["type"] != "Movie" {
					t.Errorf("unexpected body: %v", body)
				}
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"movie":{"id":42,"title":"Dune","type":"Movie"}}`))
			})

			movie, err := srv.CreateMovie(context.Background(), fields)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if movie.ID != "42" {
				t.Errorf("expected id 42, got %s", movie.ID)
			}
		})

		t.Run("Bare object", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"id":43,"title":"Dune"}`))
			})

			movie, err := srv.CreateMovie(context.Background(), fields)
			if err != nil || movie.ID != "43" {
				t.Errorf("expected id 43, got %+v (%v)", movie, err)
			}
		})

		t.Run("Empty body", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
			})

			if _, err := srv.CreateMovie(context.Background(), fields); !errors.Is(err, shared.ErrDecodeResponse) {
				t.Errorf("expected ErrDecodeResponse, got %v", err)
			}
		})

		t.Run("Server error", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("boom"))
			})

			_, err := srv.CreateMovie(context.Background(), fields)
			if !errors.Is(err, shared.ErrAPIRequest) || errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected plain ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "boom") {
				t.Errorf("expected body text in error, got %v", err)
			}
		})
	})

	t.Run("UpdateMovie", func(t *testing.T) {
		fields := models.MovieFields{Title: "Dune: Part Two", Type: models.TypeMovie}

		t.Run("Puts to record path", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPut || r.URL.Path != "/api/movies/42" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				w.Write([]byte(`{"movie":{"id":42,"title":"Dune: Part Two"}}`))
			})

			movie, err := srv.UpdateMovie(context.Background(), "42", fields)
			if err != nil || movie.Title != "Dune: Part Two" {
				t.Errorf("unexpected result %+v (%v)", movie, err)
			}
		})

		t.Run("No content echoes fields", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})

			movie, err := srv.UpdateMovie(context.Background(), "42", fields)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if movie.ID != "42" || movie.Title != fields.Title {
				t.Errorf("unexpected movie: %+v", movie)
			}
		})

		t.Run("Not found", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			})

			_, err := srv.UpdateMovie(context.Background(), "99", fields)
			if !errors.Is(err, shared.ErrRecordNotFound) {
				t.Errorf("expected ErrRecordNotFound, got %v", err)
			}
		})
	})

	t.Run("DeleteMovie", func(t *testing.T) {
		for _, status := range []int{http.StatusOK, http.StatusNoContent} {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete || r.URL.Path != "/api/movies/3" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(status)
			})

			if err := srv.DeleteMovie(context.Background(), "3"); err != nil {
				t.Errorf("status %d: expected no error, got %v", status, err)
			}
		}
	})

	t.Run("Transport failures", func(t *testing.T) {
		t.Run("Connection Error", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}
			srv := NewAPIService("http://example.com/", client, nil)

			_, err := srv.AllMovies(context.Background())
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})

		t.Run("Read Error", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     make(http.Header),
				}, nil),
			}
			srv := NewAPIService("http://example.com/", client, nil)

			_, err := srv.AllMovies(context.Background())
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected read error, got %v", err)
			}
		})

		t.Run("Cancelled context", func(t *testing.T) {
			limiter := rate.NewLimiter(rate.Limit(0.001), 1)
			limiter.Allow()
			srv := NewAPIService("http://example.com/", nil, limiter)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := srv.AllMovies(ctx); err == nil {
				t.Error("expected error for cancelled context")
			}
		})
	})
}

func TestErrorMessage(t *testing.T) {
	tc := []struct {
		body string
		want string
	}{
		{body: `{"message":"m"}`, want: "m"},
		{body: `{"error":"e"}`, want: "e"},
		{body: `{"detail":"d"}`, want: "d"},
		{body: ` plain `, want: "plain"},
		{body: ``, want: ""},
	}

	for _, tt := range tc {
		if got := errorMessage([]byte(tt.body)); got != tt.want {
			t.Errorf("errorMessage(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}
