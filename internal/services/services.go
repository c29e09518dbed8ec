// package services defines the backend collaborators used by the session and catalog controllers
package services

import (
	"context"

	"github.com/desertthunder/cinedex/internal/models"
)

// AuthService exchanges credentials for a bearer token.
type AuthService interface {
	// Login authenticates an existing account.
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)

	// Signup creates an account and returns its session.
	Signup(ctx context.Context, name, email, password string) (*models.AuthResult, error)
}

// MovieService is the catalog record API.
type MovieService interface {
	// ListMovies returns one page of records matching the query's search term.
	ListMovies(ctx context.Context, q models.ListQuery) ([]models.Movie, error)

	// AllMovies returns the unpaginated collection.
	AllMovies(ctx context.Context) ([]models.Movie, error)

	// CreateMovie sends the textual fields and returns the created record with its id.
	CreateMovie(ctx context.Context, fields models.MovieFields) (*models.Movie, error)

	// UpdateMovie replaces the textual fields of record id.
	UpdateMovie(ctx context.Context, id models.ID, fields models.MovieFields) (*models.Movie, error)

	// DeleteMovie removes record id.
	DeleteMovie(ctx context.Context, id models.ID) error
}

var (
	_ AuthService  = (*APIService)(nil)
	_ MovieService = (*APIService)(nil)
)
