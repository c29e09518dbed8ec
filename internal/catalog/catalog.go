package catalog

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinedex/internal/notify"
	"github.com/desertthunder/cinedex/internal/services"
)

// Notification texts shown to the user.
const (
	MsgDeleted       = "Movie deleted successfully"
	MsgDeleteFailed  = "Failed to delete movie"
	MsgCreated       = "Movie/Show added successfully!"
	MsgCreateFailed  = "Failed to add movie/show"
	MsgUpdated       = "Movie/Show updated successfully!"
	MsgUpdateFailed  = "Failed to update movie/show"
	MsgNotFound      = "Movie not found"
	MsgFetchFailed   = "Failed to fetch movie details"
	MsgListFailed    = "Failed to load movies"
	MsgImageFailed   = "Failed to read image"
	MsgInvalidRecord = "Please fill in every field"
)

// Authenticator reports whether requests can carry a session token.
type Authenticator interface {
	IsAuthenticated() bool
}

// Deps are the collaborators shared by the list and form controllers.
type Deps struct {
	Movies   services.MovieService
	Images   ImageStore
	Auth     Authenticator
	Notifier notify.Notifier
	Logger   *log.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = notify.Discard
	}
	if d.Logger == nil {
		d.Logger = log.Default()
	}
	return d
}

func (d Deps) authenticated() bool {
	return d.Auth == nil || d.Auth.IsAuthenticated()
}
