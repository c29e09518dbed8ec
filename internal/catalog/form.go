package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/desertthunder/cinedex/internal/models"
	"github.com/desertthunder/cinedex/internal/notify"
	"github.com/desertthunder/cinedex/internal/shared"
)

// Mode distinguishes the create form from the edit form.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// FormController backs the add and edit forms.
type FormController struct {
	deps    Deps
	mode    Mode
	id      models.ID
	handoff *models.Movie

	mu         sync.Mutex
	fields     models.MovieFields
	image      *PendingImage
	preview    string
	loading    bool
	submitting bool
}

// NewCreateForm returns an empty create form.
func NewCreateForm(deps Deps) *FormController {
	return &FormController{deps: deps.withDefaults(), mode: ModeCreate, fields: models.NewMovieFields()}
}

// NewEditForm returns an edit form for id. handoff is the record passed along by
// the list view, or nil when the form must look it up itself.
func NewEditForm(deps Deps, id models.ID, handoff *models.Movie) *FormController {
	f := &FormController{
		deps:    deps.withDefaults(),
		mode:    ModeEdit,
		id:      id,
		fields:  models.NewMovieFields(),
		loading: true,
	}
	if handoff != nil {
		h := *handoff
		f.handoff = &h
	}
	return f
}

// Load pre-populates an edit form, from the handoff when present or else by
// scanning the full collection for the id. It is a no-op for create forms.
//
// Loading is resolved on every path, including not-found and fetch failures.
func (f *FormController) Load(ctx context.Context) error {
	if f.mode == ModeCreate {
		return nil
	}

	defer func() {
		f.mu.Lock()
		f.loading = false
		f.mu.Unlock()
	}()

	if f.handoff != nil {
		f.populate(*f.handoff)
		return nil
	}

	movies, err := f.deps.Movies.AllMovies(ctx)
	if err != nil {
		f.deps.Logger.Error("error fetching movie details", "id", f.id, "error", err)
		notify.Error(f.deps.Notifier, MsgFetchFailed)
		return err
	}

	i := slices.IndexFunc(movies, func(m models.Movie) bool { return m.ID == f.id })
	if i < 0 {
		notify.Error(f.deps.Notifier, MsgNotFound)
		return fmt.Errorf("%w: %s", shared.ErrRecordNotFound, f.id)
	}

	f.populate(movies[i])
	return nil
}

func (f *FormController) populate(m models.Movie) {
	fields := m.Fields()
	if !fields.Type.Valid() {
		fields.Type = models.TypeMovie
	}
	ref := ResolveImage(f.deps.Images, f.deps.Logger, m)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields = fields
	f.preview = ref.Value
}

// Set assigns a textual field.
func (f *FormController) Set(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields.Set(name, value)
}

// Fields returns the current textual fields.
func (f *FormController) Fields() models.MovieFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// SelectImage starts decoding the image at path and makes it the form's image.
//
// In edit mode the decoded image is written to the local store as soon as it is
// ready, whether or not the record update later succeeds. The returned pending
// image resolves after that write.
func (f *FormController) SelectImage(path string) *PendingImage {
	return f.attach(LoadImage(path))
}

// SelectImageData is [FormController.SelectImage] for an already decoded data URL.
func (f *FormController) SelectImageData(dataURL string) *PendingImage {
	return f.attach(ResolvedImage(dataURL))
}

func (f *FormController) attach(decode *PendingImage) *PendingImage {
	result := decode
	if f.mode == ModeEdit {
		result = newPendingImage()
		go func() {
			dataURL, err := decode.Wait(context.Background())
			if err == nil {
				f.storeImage(f.id, dataURL)
			}
			result.resolve(dataURL, err)
		}()
	}

	f.mu.Lock()
	f.image = result
	f.mu.Unlock()

	go func() {
		if dataURL, err := result.Wait(context.Background()); err == nil {
			f.mu.Lock()
			if f.image == result {
				f.preview = dataURL
			}
			f.mu.Unlock()
		}
	}()
	return result
}

func (f *FormController) storeImage(id models.ID, dataURL string) {
	if f.deps.Images == nil || dataURL == "" {
		return
	}
	if err := f.deps.Images.Put(id, dataURL); err != nil {
		f.deps.Logger.Warn("failed to store local image", "id", id, "error", err)
	}
}

// Submit validates the form, waits for any pending image and sends the textual
// fields. On success it returns the saved record and the caller should go back
// to the list. On failure the fields are kept so the user can retry.
func (f *FormController) Submit(ctx context.Context) (*models.Movie, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: submission in progress", shared.ErrFetchInFlight)
	}
	f.submitting = true
	fields, image := f.fields, f.image
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	if !f.deps.authenticated() {
		return nil, shared.ErrNotAuthenticated
	}

	if err := fields.Validate(); err != nil {
		notify.Error(f.deps.Notifier, MsgInvalidRecord)
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	var dataURL string
	if image != nil {
		var err error
		if dataURL, err = image.Wait(ctx); err != nil {
			f.deps.Logger.Error("error reading image", "error", err)
			notify.Error(f.deps.Notifier, MsgImageFailed)
			return nil, err
		}
	}

	if f.mode == ModeEdit {
		return f.update(ctx, fields, dataURL)
	}
	return f.create(ctx, fields, dataURL)
}

func (f *FormController) create(ctx context.Context, fields models.MovieFields, dataURL string) (*models.Movie, error) {
	movie, err := f.deps.Movies.CreateMovie(ctx, fields)
	if err != nil {
		f.deps.Logger.Error("add movie error", "error", err)
		notify.Error(f.deps.Notifier, MsgCreateFailed)
		return nil, err
	}

	if dataURL != "" {
		if movie.ID.Truthy() {
			f.storeImage(movie.ID, dataURL)
		} else {
			f.deps.Logger.Warn("created movie has no id, image not stored", "title", movie.Title)
		}
	}

	notify.Success(f.deps.Notifier, MsgCreated)
	return movie, nil
}

func (f *FormController) update(ctx context.Context, fields models.MovieFields, dataURL string) (*models.Movie, error) {
	movie, err := f.deps.Movies.UpdateMovie(ctx, f.id, fields)
	if err != nil {
		f.deps.Logger.Error("update movie error", "id", f.id, "error", err)
		notify.Error(f.deps.Notifier, MsgUpdateFailed)
		return nil, err
	}

	f.storeImage(f.id, dataURL)

	notify.Success(f.deps.Notifier, MsgUpdated)
	return movie, nil
}

func (f *FormController) Mode() Mode { return f.mode }

// ID returns the record id of an edit form.
func (f *FormController) ID() models.ID { return f.id }

// Loading reports whether an edit form is still fetching its record.
func (f *FormController) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Submitting reports whether a submission is in progress.
func (f *FormController) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Preview returns the image currently shown on the form: a data URL, a remote
// URL or "".
func (f *FormController) Preview() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preview
}

// PendingImage returns the selected image decode, or nil.
func (f *FormController) PendingImage() *PendingImage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.image
}
