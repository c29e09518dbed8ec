package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinedex/internal/models"
	"github.com/desertthunder/cinedex/internal/services"
	"golang.org/x/crypto/bcrypt"
)

func newTestBackend(t *testing.T) (*CatalogHandler, *httptest.Server, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := log.New(&buf)
	h := NewCatalogHandler(logger, bcrypt.MinCost)
	srv := httptest.NewServer(NewCatalogRouter(h, logger))
	t.Cleanup(srv.Close)
	return h, srv, &buf
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func signup(t *testing.T, base string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, base+"/api/auth/signup", "", map[string]string{
		"name": "A", "email": "a@b.com", "password": "x",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d", resp.StatusCode)
	}
	var result models.AuthResult
	json.NewDecoder(resp.Body).Decode(&result)
	return result.Token
}

func TestBasicRouter(t *testing.T) {
	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mw("first"), mw("second"))
		r.Handle(http.MethodGet, "/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order: %v", order)
		}
	})

	t.Run("method mismatch", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle("get", "/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("unmatched routes pass through middleware", func(t *testing.T) {
		called := false
		r := NewBasicRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				called = true
				next.ServeHTTP(w, req)
			})
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
		if rec.Code != http.StatusNotFound || !called {
			t.Errorf("expected logged 404, got %d (middleware called: %v)", rec.Code, called)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("RequestLogger", func(t *testing.T) {
		var buf bytes.Buffer
		h := RequestLogger(log.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tea", nil))

		if rec.Header().Get(RequestIDHeader) == "" {
			t.Error("expected request id header")
		}
		if out := buf.String(); !strings.Contains(out, "/tea") || !strings.Contains(out, "418") {
			t.Errorf("unexpected log output %q", out)
		}
	})

	t.Run("Recoverer", func(t *testing.T) {
		h := Recoverer(log.New(io.Discard))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("RequireBearer", func(t *testing.T) {
		validate := func(token string) (*models.User, bool) {
			if token == "good" {
				return &models.User{ID: "7"}, true
			}
			return nil, false
		}
		h := RequireBearer(validate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user.ID != "7" {
				t.Error("expected user in context")
			}
		}))

		tc := []struct {
			header string
			want   int
		}{
			{header: "", want: http.StatusUnauthorized},
			{header: "Basic good", want: http.StatusUnauthorized},
			{header: "Bearer ", want: http.StatusUnauthorized},
			{header: "Bearer bad", want: http.StatusUnauthorized},
			{header: "Bearer good", want: http.StatusOK},
			{header: "bearer good", want: http.StatusOK},
		}

		for _, tt := range tc {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("Authorization %q: expected %d, got %d", tt.header, tt.want, rec.Code)
			}
		}
	})
}

func TestCatalogHandler(t *testing.T) {
	t.Run("signup then login", func(t *testing.T) {
		_, srv, _ := newTestBackend(t)
		signup(t, srv.URL)

		resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{"email": "A@B.com", "password": "x"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("login status = %d", resp.StatusCode)
		}
		var result models.AuthResult
		json.NewDecoder(resp.Body).Decode(&result)
		if err := result.Validate(); err != nil {
			t.Errorf("invalid login response: %v", err)
		}
	})

	t.Run("duplicate signup", func(t *testing.T) {
		_, srv, _ := newTestBackend(t)
		signup(t, srv.URL)

		resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/signup", "", map[string]string{"name": "B", "email": "a@b.com", "password": "y"})
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("expected 409, got %d", resp.StatusCode)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, srv, _ := newTestBackend(t)
		signup(t, srv.URL)

		resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{"email": "a@b.com", "password": "nope"})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("movies require a token", func(t *testing.T) {
		_, srv, _ := newTestBackend(t)

		resp := doJSON(t, http.MethodGet, srv.URL+"/api/movies", "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("list shapes and pagination", func(t *testing.T) {
		h, srv, _ := newTestBackend(t)
		token := signup(t, srv.URL)
		for i := range 12 {
			h.Seed(models.Movie{Title: "Movie " + string(rune('A'+i)), Type: models.TypeMovie})
		}
		h.Seed(models.Movie{Title: "Inception", Director: "Nolan", Type: models.TypeMovie})

		resp := doJSON(t, http.MethodGet, srv.URL+"/api/movies", token, nil)
		var all []models.Movie
		if err := json.NewDecoder(resp.Body).Decode(&all); err != nil || len(all) != 13 {
			t.Fatalf("expected bare array of 13, got %d (%v)", len(all), err)
		}

		resp = doJSON(t, http.MethodGet, srv.URL+"/api/movies?page=2&limit=10&search=", token, nil)
		var page struct {
			Movies []models.Movie `json:"movies"`
		}
		json.NewDecoder(resp.Body).Decode(&page)
		if len(page.Movies) != 3 {
			t.Errorf("expected 3 records on page 2, got %d", len(page.Movies))
		}

		resp = doJSON(t, http.MethodGet, srv.URL+"/api/movies?page=1&limit=10&search=nolan", token, nil)
		json.NewDecoder(resp.Body).Decode(&page)
		if len(page.Movies) != 1 || page.Movies[0].Title != "Inception" {
			t.Errorf("unexpected search result %+v", page.Movies)
		}

		resp = doJSON(t, http.MethodGet, srv.URL+"/api/movies?page=9&limit=10", token, nil)
		json.NewDecoder(resp.Body).Decode(&page)
		if len(page.Movies) != 0 {
			t.Errorf("expected empty page past the end, got %d", len(page.Movies))
		}

		for query, want := range map[string]int{
			"page=9223372036854775807&limit=10": 0,
			"page=2&limit=9223372036854775807":  0,
			"page=1&limit=9223372036854775807":  13,
		} {
			resp = doJSON(t, http.MethodGet, srv.URL+"/api/movies?"+query, token, nil)
			if resp.StatusCode != http.StatusOK {
				t.Errorf("%s: expected 200, got %d", query, resp.StatusCode)
				continue
			}
			var bounded struct {
				Movies []models.Movie `json:"movies"`
			}
			json.NewDecoder(resp.Body).Decode(&bounded)
			if len(bounded.Movies) != want {
				t.Errorf("%s: expected %d records, got %d", query, want, len(bounded.Movies))
			}
		}
	})

	t.Run("create update delete", func(t *testing.T) {
		_, srv, _ := newTestBackend(t)
		token := signup(t, srv.URL)

		fields := models.MovieFields{Title: "Dune", Type: models.TypeMovie, Year: "2021"}
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/movies", token, fields)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create status = %d", resp.StatusCode)
		}
		var created struct {
			Movie models.Movie `json:"movie"`
		}
		json.NewDecoder(resp.Body).Decode(&created)
		if !created.Movie.ID.Truthy() {
			t.Fatal("expected an id")
		}

		fields.Title = "Dune: Part Two"
		resp = doJSON(t, http.MethodPut, srv.URL+"/api/movies/"+created.Movie.ID.String(), token, fields)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("update status = %d", resp.StatusCode)
		}

		resp = doJSON(t, http.MethodDelete, srv.URL+"/api/movies/"+created.Movie.ID.String(), token, nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("delete status = %d", resp.StatusCode)
		}

		resp = doJSON(t, http.MethodDelete, srv.URL+"/api/movies/"+created.Movie.ID.String(), token, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("second delete status = %d", resp.StatusCode)
		}

		resp = doJSON(t, http.MethodPut, srv.URL+"/api/movies/999", token, fields)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("update of unknown id status = %d", resp.StatusCode)
		}
	})

	t.Run("health check", func(t *testing.T) {
		_, srv, _ := newTestBackend(t)
		resp := doJSON(t, http.MethodGet, srv.URL+"/healthz", "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health status = %d", resp.StatusCode)
		}
	})
}

// TestClientAgainstBackend drives the REST client against the in-memory backend.
func TestClientAgainstBackend(t *testing.T) {
	_, srv, _ := newTestBackend(t)
	ctx := context.Background()

	api := services.NewAPIService(srv.URL+"/", nil, nil)
	result, err := api.Signup(ctx, "A", "a@b.com", "x")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	authed := api.WithClient(&http.Client{Transport: bearerTransport(result.Token)})

	created, err := authed.CreateMovie(ctx, models.MovieFields{Title: "Dune", Type: models.TypeMovie})
	if err != nil {
		t.Fatalf("CreateMovie() error = %v", err)
	}

	movies, err := authed.ListMovies(ctx, models.ListQuery{Page: 1, PageSize: 10, Search: "dune"})
	if err != nil || len(movies) != 1 || movies[0].ID != created.ID {
		t.Fatalf("ListMovies() = %+v, %v", movies, err)
	}

	all, err := authed.AllMovies(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("AllMovies() = %+v, %v", all, err)
	}

	if err := authed.DeleteMovie(ctx, created.ID); err != nil {
		t.Fatalf("DeleteMovie() error = %v", err)
	}
	if services.StatusCode(authed.DeleteMovie(ctx, created.ID)) != http.StatusNotFound {
		t.Error("expected 404 deleting twice")
	}
}

type bearerTransport string

func (b bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+string(b))
	return http.DefaultTransport.RoundTrip(req)
}

func TestListenAndServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ListenAndServe(ctx, "127.0.0.1:0", http.NotFoundHandler(), log.New(io.Discard))
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
