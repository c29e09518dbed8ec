package catalog

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinedex/internal/models"
	tu "github.com/desertthunder/cinedex/internal/testing"
)

type memImages struct {
	mu     sync.Mutex
	data   map[models.ID]string
	getErr error
}

func newMemImages() *memImages {
	return &memImages{data: make(map[models.ID]string)}
}

func (m *memImages) Put(id models.ID, dataURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = dataURL
	return nil
}

func (m *memImages) Get(id models.ID) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[id]
	return v, ok, nil
}

func (m *memImages) lookup(id models.ID) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[id]
	return v, ok
}

type fakeAuth bool

func (f fakeAuth) IsAuthenticated() bool { return bool(f) }

// makeMovies returns n records titled prefix-1..prefix-n with ids starting at first.
func makeMovies(prefix string, first, n int) []models.Movie {
	movies := make([]models.Movie, n)
	for i := range n {
		movies[i] = models.Movie{
			ID:    models.ID(fmt.Sprint(first + i)),
			Title: fmt.Sprintf("%s-%d", prefix, i+1),
			Type:  models.TypeMovie,
		}
	}
	return movies
}

func newDeps(movies *tu.FakeMovies, images *memImages, rec *tu.Recorder) Deps {
	return Deps{
		Movies:   movies,
		Images:   images,
		Auth:     fakeAuth(true),
		Notifier: rec,
		Logger:   log.New(io.Discard),
	}
}

var errBoom = errors.New("boom")
