// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/cinedex/internal/models"
	"github.com/desertthunder/cinedex/internal/notify"
)

// FakeAuth is a test double for [services.AuthService]
type FakeAuth struct {
	mu     sync.Mutex
	Result *models.AuthResult
	Err    error
	Calls  []string
}

func (f *FakeAuth) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "login:"+email)
	return f.Result, f.Err
}

func (f *FakeAuth) Signup(ctx context.Context, name, email, password string) (*models.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "signup:"+email)
	return f.Result, f.Err
}

// FakeMovies is a test double for [services.MovieService].
//
// Each method delegates to its func field when set and otherwise succeeds with zero values.
type FakeMovies struct {
	mu      sync.Mutex
	Queries []models.ListQuery
	Deleted []models.ID
	Created []models.MovieFields
	Updated map[models.ID]models.MovieFields

	ListFunc   func(ctx context.Context, q models.ListQuery) ([]models.Movie, error)
	AllFunc    func(ctx context.Context) ([]models.Movie, error)
	CreateFunc func(ctx context.Context, fields models.MovieFields) (*models.Movie, error)
	UpdateFunc func(ctx context.Context, id models.ID, fields models.MovieFields) (*models.Movie, error)
	DeleteFunc func(ctx context.Context, id models.ID) error
}

func (f *FakeMovies) ListMovies(ctx context.Context, q models.ListQuery) ([]models.Movie, error) {
	f.mu.Lock()
	f.Queries = append(f.Queries, q)
	fn := f.ListFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, q)
	}
	return []models.Movie{}, nil
}

func (f *FakeMovies) AllMovies(ctx context.Context) ([]models.Movie, error) {
	if f.AllFunc != nil {
		return f.AllFunc(ctx)
	}
	return []models.Movie{}, nil
}

func (f *FakeMovies) CreateMovie(ctx context.Context, fields models.MovieFields) (*models.Movie, error) {
	f.mu.Lock()
	f.Created = append(f.Created, fields)
	f.mu.Unlock()

	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, fields)
	}
	return &models.Movie{ID: "1", Title: fields.Title, Type: fields.Type}, nil
}

func (f *FakeMovies) UpdateMovie(ctx context.Context, id models.ID, fields models.MovieFields) (*models.Movie, error) {
	f.mu.Lock()
	if f.Updated == nil {
		f.Updated = make(map[models.ID]models.MovieFields)
	}
	f.Updated[id] = fields
	f.mu.Unlock()

	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, id, fields)
	}
	return &models.Movie{ID: id, Title: fields.Title, Type: fields.Type}, nil
}

func (f *FakeMovies) DeleteMovie(ctx context.Context, id models.ID) error {
	f.mu.Lock()
	f.Deleted = append(f.Deleted, id)
	f.mu.Unlock()

	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	return nil
}

// QueryCount returns the number of list requests made so far.
func (f *FakeMovies) QueryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Queries)
}

// Recorder is a [notify.Notifier] that keeps every notification
type Recorder struct {
	mu    sync.Mutex
	items []notify.Notification
}

func (r *Recorder) Notify(n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.items...)
}

// Last returns the most recent notification and whether there was one.
func (r *Recorder) Last() (notify.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return notify.Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// AssertLastNotification fails the test unless the latest notification matches level and message.
func AssertLastNotification(t *testing.T, r *Recorder, level notify.Level, message string) {
	t.Helper()
	n, ok := r.Last()
	if !ok {
		t.Fatalf("expected notification %q, got none", message)
	}
	if n.Level != level || n.Message != message {
		t.Errorf("expected %s notification %q, got %s %q", level, message, n.Level, n.Message)
	}
}

// MemoryStorage is an in-memory key/value store with optional injected failures.
type MemoryStorage struct {
	mu      sync.Mutex
	Data    map[string]string
	SetErr  error
	GetErr  error
	DelErr  error
	Deletes int
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{Data: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.Data[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.Data[key] = value
	return nil
}

func (m *MemoryStorage) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes++
	if m.DelErr != nil {
		return m.DelErr
	}
	for _, key := range keys {
		delete(m.Data, key)
	}
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustWriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
