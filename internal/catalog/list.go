package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/desertthunder/cinedex/internal/models"
	"github.com/desertthunder/cinedex/internal/notify"
	"github.com/desertthunder/cinedex/internal/shared"
)

// DefaultPageSize is the number of records requested per page.
const DefaultPageSize = 10

// ListOpts configures a [ListController].
type ListOpts struct {
	PageSize          int
	NotifyFetchErrors bool // also surface list fetch failures as notifications
}

// ListController holds the accumulated list of records for the current search.
type ListController struct {
	deps Deps
	opts ListOpts

	mu       sync.Mutex
	records  []models.Movie
	page     int
	hasMore  bool
	search   string
	seq      uint64
	inflight int

	pending    models.ID
	confirming bool
}

// NewListController creates a [ListController] on page 1 with an empty list.
func NewListController(deps Deps, opts ListOpts) *ListController {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &ListController{deps: deps.withDefaults(), opts: opts, page: 1, records: []models.Movie{}}
}

// Fetch requests page for search. Page 1 replaces the list, later pages append.
//
// Failures are logged and leave the list unchanged. Responses overtaken by a
// newer fetch are dropped and reported as [shared.ErrStaleResponse].
func (c *ListController) Fetch(ctx context.Context, page int, search string) error {
	return c.fetch(ctx, page, search, false)
}

// Search switches to a new term, resetting to page 1 and replacing the list.
// Every call issues a request.
func (c *ListController) Search(ctx context.Context, term string) error {
	c.mu.Lock()
	c.search = term
	c.page = 1
	c.mu.Unlock()

	return c.fetch(ctx, 1, term, false)
}

// LoadMore fetches the page after the current one.
//
// It does nothing when the last page was short and returns
// [shared.ErrFetchInFlight] while another fetch is outstanding.
func (c *ListController) LoadMore(ctx context.Context) error {
	return c.fetch(ctx, 0, "", true)
}

// OnRowVisible is the infinite scroll trigger: it loads more once the last row is shown.
func (c *ListController) OnRowVisible(ctx context.Context, index int) error {
	c.mu.Lock()
	last := len(c.records) - 1
	c.mu.Unlock()

	if index < 0 || index != last {
		return nil
	}

	err := c.LoadMore(ctx)
	if errors.Is(err, shared.ErrFetchInFlight) {
		return nil
	}
	return err
}

func (c *ListController) fetch(ctx context.Context, page int, search string, more bool) error {
	if !c.deps.authenticated() {
		return shared.ErrNotAuthenticated
	}
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	if more {
		if c.inflight > 0 {
			c.mu.Unlock()
			return shared.ErrFetchInFlight
		}
		if !c.hasMore {
			c.mu.Unlock()
			return nil
		}
		// the next page is read in the same critical section that claims seq
		page, search = c.page+1, c.search
	}
	c.seq++
	seq := c.seq
	c.inflight++
	c.mu.Unlock()

	query := models.ListQuery{Page: page, PageSize: c.opts.PageSize, Search: search}
	movies, err := c.deps.Movies.ListMovies(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--

	if seq != c.seq {
		c.deps.Logger.Debug("discarding stale list response", "page", page, "search", search)
		return shared.ErrStaleResponse
	}

	if err != nil {
		c.deps.Logger.Error("error fetching movies", "page", page, "search", search, "error", err)
		if c.opts.NotifyFetchErrors {
			notify.Error(c.deps.Notifier, MsgListFailed)
		}
		return fmt.Errorf("failed to fetch page %d: %w", page, err)
	}

	if page == 1 {
		c.records = append([]models.Movie{}, movies...)
	} else {
		c.records = append(c.records, movies...)
	}
	c.page = page
	c.search = search
	c.hasMore = len(movies) == c.opts.PageSize
	return nil
}

// ConfirmDelete opens the confirmation dialog for id.
func (c *ListController) ConfirmDelete(id models.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending, c.confirming = id, true
}

// CancelDelete closes the confirmation dialog.
func (c *ListController) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending, c.confirming = "", false
}

// PendingDelete returns the id awaiting confirmation.
func (c *ListController) PendingDelete() (models.ID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending, c.confirming
}

// DeleteConfirmed deletes the record awaiting confirmation.
func (c *ListController) DeleteConfirmed(ctx context.Context) error {
	id, ok := c.PendingDelete()
	if !ok {
		return fmt.Errorf("%w: no deletion pending", shared.ErrInvalidInput)
	}
	return c.Delete(ctx, id)
}

// Delete removes id on the server, then from the list, and closes the dialog.
// On failure the list and dialog are left as they were.
func (c *ListController) Delete(ctx context.Context, id models.ID) error {
	if !c.deps.authenticated() {
		return shared.ErrNotAuthenticated
	}

	if err := c.deps.Movies.DeleteMovie(ctx, id); err != nil {
		c.deps.Logger.Error("error deleting movie", "id", id, "error", err)
		notify.Error(c.deps.Notifier, MsgDeleteFailed)
		return err
	}

	c.mu.Lock()
	c.records = slices.DeleteFunc(c.records, func(m models.Movie) bool { return m.ID == id })
	if c.pending == id {
		c.pending, c.confirming = "", false
	}
	c.mu.Unlock()

	notify.Success(c.deps.Notifier, MsgDeleted)
	return nil
}

// ImageFor picks the image to show for m: the local image, then the server
// image, then a placeholder.
func (c *ListController) ImageFor(m models.Movie) ImageRef {
	return ResolveImage(c.deps.Images, c.deps.Logger, m)
}

// Reset drops all state, returning the controller to an empty first page.
func (c *ListController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = []models.Movie{}
	c.page, c.hasMore, c.search = 1, false, ""
	c.pending, c.confirming = "", false
	c.seq++
}

// Records returns a copy of the accumulated list.
func (c *ListController) Records() []models.Movie {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.records)
}

// Find returns the listed record with id.
func (c *ListController) Find(id models.ID) (models.Movie, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.records, func(m models.Movie) bool { return m.ID == id })
	if i < 0 {
		return models.Movie{}, false
	}
	return c.records[i], true
}

func (c *ListController) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *ListController) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

// Loading reports whether any fetch is in flight.
func (c *ListController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

func (c *ListController) SearchTerm() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}
