package server

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinedex/internal/models"
	"github.com/desertthunder/cinedex/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	user models.User
	hash []byte
}

// CatalogHandler is an in-memory implementation of the catalog REST API.
type CatalogHandler struct {
	mux    *http.ServeMux
	logger *log.Logger
	cost   int

	mu       sync.RWMutex
	accounts map[string]*account // by lower-cased email
	tokens   map[string]models.ID
	movies   []models.Movie
	nextUser int
	nextID   int
}

// NewCatalogHandler creates an empty backend. cost is the bcrypt cost; values
// outside bcrypt's range use [bcrypt.DefaultCost].
func NewCatalogHandler(logger *log.Logger, cost int) *CatalogHandler {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	h := &CatalogHandler{
		mux:      http.NewServeMux(),
		logger:   logger,
		cost:     cost,
		accounts: make(map[string]*account),
		tokens:   make(map[string]models.ID),
		nextUser: 1,
		nextID:   1,
	}

	protect := RequireBearer(h.validate)
	h.mux.HandleFunc("POST /api/auth/signup", h.signup)
	h.mux.HandleFunc("POST /api/auth/login", h.login)
	h.mux.Handle("GET /api/movies", protect(http.HandlerFunc(h.list)))
	h.mux.Handle("POST /api/movies", protect(http.HandlerFunc(h.create)))
	h.mux.Handle("PUT /api/movies/{id}", protect(http.HandlerFunc(h.update)))
	h.mux.Handle("DELETE /api/movies/{id}", protect(http.HandlerFunc(h.remove)))
	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *CatalogHandler) Routes() []string {
	return []string{"/api/auth/", "/api/movies", "/api/movies/"}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Seed adds records directly, assigning ids to those without one.
func (h *CatalogHandler) Seed(movies ...models.Movie) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, m := range movies {
		if !m.ID.Truthy() {
			m.ID = h.allocID()
		}
		h.movies = append(h.movies, m)
	}
}

func (h *CatalogHandler) allocID() models.ID {
	id := models.ID(strconv.Itoa(h.nextID))
	h.nextID++
	return id
}

func (h *CatalogHandler) validate(token string) (*models.User, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	id, ok := h.tokens[token]
	if !ok {
		return nil, false
	}
	for _, acct := range h.accounts {
		if acct.user.ID == id {
			u := acct.user
			return &u, true
		}
	}
	return nil, false
}

func (h *CatalogHandler) issueToken(id models.ID) string {
	token := shared.GenerateID()
	h.tokens[token] = id
	return token
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *CatalogHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.cost)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	key := strings.ToLower(req.Email)

	h.mu.Lock()
	if _, exists := h.accounts[key]; exists {
		h.mu.Unlock()
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	user := models.User{ID: models.ID(strconv.Itoa(h.nextUser)), Email: req.Email, Name: req.Name}
	h.nextUser++
	h.accounts[key] = &account{user: user, hash: hash}
	token := h.issueToken(user.ID)
	h.mu.Unlock()

	h.logger.Info("account created", "user", user.ID, "email", user.Email)
	writeJSON(w, http.StatusCreated, models.AuthResult{Token: token, User: &user})
}

func (h *CatalogHandler) login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.mu.RLock()
	acct, ok := h.accounts[strings.ToLower(req.Email)]
	h.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	h.mu.Lock()
	token := h.issueToken(acct.user.ID)
	h.mu.Unlock()

	user := acct.user
	writeJSON(w, http.StatusOK, models.AuthResult{Token: token, User: &user})
}

func matches(m models.Movie, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, field := range []string{m.Title, m.Director, string(m.Type)} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// list serves a bare array without page/limit, otherwise {movies:[...]}.
func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))

	h.mu.RLock()
	found := make([]models.Movie, 0, len(h.movies))
	for _, m := range h.movies {
		if matches(m, search) {
			found = append(found, m)
		}
	}
	h.mu.RUnlock()

	if !q.Has("page") && !q.Has("limit") {
		writeJSON(w, http.StatusOK, found)
		return
	}

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit < 1 {
		limit = 10
	}

	start := len(found)
	if page-1 <= len(found)/limit {
		start = min((page-1)*limit, len(found))
	}
	end := start + min(limit, len(found)-start)
	writeJSON(w, http.StatusOK, map[string]any{"movies": found[start:end]})
}

func (h *CatalogHandler) create(w http.ResponseWriter, r *http.Request) {
	var fields models.MovieFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.mu.Lock()
	movie := movieFrom(h.allocID(), fields)
	h.movies = append(h.movies, movie)
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"movie": movie})
}

func (h *CatalogHandler) update(w http.ResponseWriter, r *http.Request) {
	id := models.ID(r.PathValue("id"))

	var fields models.MovieFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.mu.Lock()
	i := slices.IndexFunc(h.movies, func(m models.Movie) bool { return m.ID == id })
	if i < 0 {
		h.mu.Unlock()
		writeError(w, http.StatusNotFound, "Movie not found")
		return
	}
	movie := movieFrom(id, fields)
	movie.Image = h.movies[i].Image
	h.movies[i] = movie
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"movie": movie})
}

func (h *CatalogHandler) remove(w http.ResponseWriter, r *http.Request) {
	id := models.ID(r.PathValue("id"))

	h.mu.Lock()
	before := len(h.movies)
	h.movies = slices.DeleteFunc(h.movies, func(m models.Movie) bool { return m.ID == id })
	removed := len(h.movies) < before
	h.mu.Unlock()

	if !removed {
		writeError(w, http.StatusNotFound, "Movie not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func movieFrom(id models.ID, f models.MovieFields) models.Movie {
	return models.Movie{
		ID:       id,
		Title:    f.Title,
		Type:     f.Type,
		Director: f.Director,
		Budget:   f.Budget,
		Location: f.Location,
		Duration: f.Duration,
		Year:     f.Year,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// NewCatalogRouter mounts h behind request logging and panic recovery and adds a health check.
func NewCatalogRouter(h *CatalogHandler, logger *log.Logger) *BasicRouter {
	r := NewBasicRouter()
	r.Use(RequestLogger(logger), Recoverer(logger))
	r.Handler(h)
	r.Handle(http.MethodGet, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	return r
}
