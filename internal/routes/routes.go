// Package routes maps navigation paths to views and gates protected ones.
package routes

import (
	"fmt"
	"strings"

	"github.com/desertthunder/cinedex/internal/models"
	"github.com/desertthunder/cinedex/internal/shared"
)

const (
	PathRoot     = "/"
	PathLogin    = "/login"
	PathRegister = "/register"
	PathMovies   = "/movies"
	PathAdd      = "/movies/add"
	editPrefix   = "/movies/edit/"
)

// View identifies a screen.
type View int

const (
	ViewLogin View = iota
	ViewRegister
	ViewList
	ViewAdd
	ViewEdit
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewRegister:
		return "register"
	case ViewList:
		return "list"
	case ViewAdd:
		return "add"
	case ViewEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// Route is a resolved navigation target.
type Route struct {
	View      View
	Path      string
	ID        models.ID // set for [ViewEdit]
	Protected bool
}

// EditPath returns the edit route path for id.
func EditPath(id models.ID) string {
	return editPrefix + id.String()
}

// Resolve parses a path. The root path resolves to the list route.
func Resolve(path string) (Route, error) {
	clean := "/" + strings.Trim(strings.TrimSpace(path), "/")

	switch clean {
	case PathRoot, PathMovies:
		return Route{View: ViewList, Path: PathMovies, Protected: true}, nil
	case PathLogin:
		return Route{View: ViewLogin, Path: PathLogin}, nil
	case PathRegister:
		return Route{View: ViewRegister, Path: PathRegister}, nil
	case PathAdd:
		return Route{View: ViewAdd, Path: PathAdd, Protected: true}, nil
	}

	if id, ok := strings.CutPrefix(clean, editPrefix); ok && id != "" && !strings.Contains(id, "/") {
		return Route{View: ViewEdit, Path: clean, ID: models.ID(id), Protected: true}, nil
	}

	return Route{}, fmt.Errorf("%w: %s", shared.ErrUnknownRoute, path)
}

// MustResolve is [Resolve] for paths known at compile time.
func MustResolve(path string) Route {
	r, err := Resolve(path)
	if err != nil {
		panic(err)
	}
	return r
}

// AuthState is the part of the session the guard consults.
type AuthState interface {
	Loading() bool
	IsAuthenticated() bool
}

// Decision is the guard verdict.
type Decision int

const (
	Render Decision = iota
	Wait
	Redirect
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	default:
		return "render"
	}
}

// Outcome is a [Decision] plus the redirect target when there is one.
type Outcome struct {
	Decision Decision
	Target   string
}

// Guard decides what to do with a navigation to route.
//
// Public routes always render. Protected routes wait while the session is
// loading and redirect to the login path when it is not authenticated.
func Guard(state AuthState, route Route) Outcome {
	if !route.Protected {
		return Outcome{Decision: Render}
	}
	if state.Loading() {
		return Outcome{Decision: Wait}
	}
	if !state.IsAuthenticated() {
		return Outcome{Decision: Redirect, Target: PathLogin}
	}
	return Outcome{Decision: Render}
}
