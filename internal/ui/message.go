package ui

import (
	"github.com/desertthunder/cinedex/internal/models"
	"github.com/desertthunder/cinedex/internal/notify"
)

// sessionRestoredMsg signals that the persisted session has been read and the
// guard can resolve routes that were waiting on it.
type sessionRestoredMsg struct{}

// navigateMsg asks the model to move to path, passing an optional record to the edit form.
type navigateMsg struct {
	path    string
	handoff *models.Movie
}

// authDoneMsg carries the result of a login or registration.
type authDoneMsg struct {
	err error
}

// pageLoadedMsg is sent after a list fetch settles. The controller holds the records.
type pageLoadedMsg struct {
	err error
}

// deletedMsg carries the result of a confirmed delete.
type deletedMsg struct {
	err error
}

// formLoadedMsg is sent once an edit form has its record (or gave up looking).
type formLoadedMsg struct {
	err error
}

// imageReadyMsg is sent when a selected image has been decoded.
type imageReadyMsg struct {
	path string
	err  error
}

// submittedMsg carries the result of a form submission.
type submittedMsg struct {
	movie *models.Movie
	err   error
}

// toastMsg wraps a notification received from the controllers.
type toastMsg notify.Notification

// toastExpiredMsg clears the toast line if it still shows notification seq.
type toastExpiredMsg struct {
	seq int
}
