package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinedex/internal/models"
	"github.com/desertthunder/cinedex/internal/services"
	"github.com/desertthunder/cinedex/internal/shared"
	"golang.org/x/oauth2"
)

// Storage is the durable key/value store backing the session.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// Store holds the current session.
type Store struct {
	mu      sync.RWMutex
	token   string
	user    *models.User
	loading bool

	storage Storage
	auth    services.AuthService
	base    *http.Client
	logger  *log.Logger
}

// NewStore creates a [Store] in the loading state.
//
// base is the client used for unauthenticated calls and as the transport under
// [Store.Client]. A nil base uses [http.DefaultClient].
func NewStore(storage Storage, auth services.AuthService, base *http.Client, logger *log.Logger) *Store {
	if base == nil {
		base = http.DefaultClient
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Store{storage: storage, auth: auth, base: base, logger: logger, loading: true}
}

// Restore loads the persisted session. It never fails: unreadable or malformed
// state is logged, deleted and treated as absent.
func (s *Store) Restore(ctx context.Context) {
	user, token, err := s.readPersisted()

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.loading = false }()

	if err == nil {
		s.token, s.user = token, user
		s.logger.Debug("session restored", "user", user.ID)
		return
	}

	s.token, s.user = "", nil
	s.logger.Debug("no persisted session", "reason", err)

	if delErr := s.storage.Delete(models.KeyToken, models.KeyUser); delErr != nil {
		s.logger.Warn("failed to clear persisted session", "error", delErr)
	}
}

func (s *Store) readPersisted() (*models.User, string, error) {
	token, ok, err := s.storage.Get(models.KeyToken)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", shared.ErrInvalidSession, err)
	}
	if !ok || token == "" {
		return nil, "", fmt.Errorf("%w: token missing", shared.ErrInvalidSession)
	}

	raw, ok, err := s.storage.Get(models.KeyUser)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", shared.ErrInvalidSession, err)
	}
	if !ok {
		return nil, "", fmt.Errorf("%w: user missing", shared.ErrInvalidSession)
	}

	var user *models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Error("malformed persisted user", "error", err)
		return nil, "", fmt.Errorf("%w: %w", shared.ErrInvalidSession, err)
	}
	if user == nil || !user.ID.Truthy() {
		return nil, "", fmt.Errorf("%w: user has no id", shared.ErrInvalidSession)
	}
	return user, token, nil
}

// Login authenticates with email and password. On failure the session is unchanged.
func (s *Store) Login(ctx context.Context, email, password string) error {
	result, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.establish(result)
}

// Register creates an account and signs in. On failure the session is unchanged.
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	result, err := s.auth.Signup(ctx, name, email, password)
	if err != nil {
		return err
	}
	return s.establish(result)
}

func (s *Store) establish(result *models.AuthResult) error {
	if err := result.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	userJSON, err := json.Marshal(result.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(models.KeyToken, result.Token); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err := s.storage.Set(models.KeyUser, string(userJSON)); err != nil {
		s.rollback()
		return fmt.Errorf("failed to persist session: %w", err)
	}

	user := *result.User
	s.token, s.user = result.Token, &user
	s.logger.Info("signed in", "user", user.ID, "email", user.Email)
	return nil
}

// rollback restores storage to the in-memory session after a partial write.
func (s *Store) rollback() {
	if s.token == "" {
		if err := s.storage.Delete(models.KeyToken, models.KeyUser); err != nil {
			s.logger.Warn("failed to roll back session", "error", err)
		}
		return
	}
	if err := s.storage.Set(models.KeyToken, s.token); err != nil {
		s.logger.Warn("failed to roll back session", "error", err)
	}
}

// Logout clears the session from memory and storage. It is idempotent.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token, s.user = "", nil
	if err := s.storage.Delete(models.KeyToken, models.KeyUser); err != nil {
		s.logger.Warn("failed to clear persisted session", "error", err)
	}
}

// IsAuthenticated reports whether a token is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Loading reports whether the initial restore is still pending.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Token returns the current bearer token or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, or nil.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Snapshot returns a consistent copy of the session.
func (s *Store) Snapshot() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := models.Session{Token: s.token}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Base returns the unauthenticated client.
func (s *Store) Base() *http.Client {
	return s.base
}

// Client returns an HTTP client that attaches the current token as a bearer
// credential. Requests made while signed out fail with [shared.ErrNotAuthenticated].
func (s *Store) Client() *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: tokenSource{store: s},
			Base:   s.base.Transport,
		},
		Timeout: s.base.Timeout,
	}
}

// tokenSource reads the store on every call and must not be cached.
type tokenSource struct {
	store *Store
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	token := ts.store.Token()
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
