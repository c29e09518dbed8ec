package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cinedex/internal/catalog"
	"github.com/desertthunder/cinedex/internal/models"
	"github.com/desertthunder/cinedex/internal/routes"
	"github.com/desertthunder/cinedex/internal/shared"
)

var (
	_ list.Item = movieItem{}
)

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie models.Movie
	image catalog.ImageRef
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string       { return i.movie.Title }
func (i movieItem) Description() string {
	parts := []string{string(i.movie.Type)}
	if i.movie.Year != "" {
		parts = append(parts, i.movie.Year)
	}
	if i.movie.Director != "" {
		parts = append(parts, i.movie.Director)
	}
	parts = append(parts, "image: "+i.image.Source.String())
	return strings.Join(parts, " • ")
}

// listView is the record list screen: a search box over a bubbles list backed by
// a [catalog.ListController].
type listView struct {
	ctrl      *catalog.ListController
	list      list.Model
	search    textinput.Model
	searching bool
	err       error
}

func newListView(ctrl *catalog.ListController, width, height int) *listView {
	l := list.New(nil, list.NewDefaultDelegate(), max(width, 0), max(height, 0))
	l.Title = "Movies & Shows"
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search movies..."
	search.CharLimit = 100

	return &listView{ctrl: ctrl, list: l, search: search}
}

func (v *listView) setSize(width, height int) {
	v.list.SetSize(max(width, 0), max(height, 0))
}

// refresh rebuilds the list items from the controller's records.
func (v *listView) refresh() tea.Cmd {
	records := v.ctrl.Records()
	items := make([]list.Item, len(records))
	for i, movie := range records {
		items[i] = movieItem{movie: movie, image: v.ctrl.ImageFor(movie)}
	}
	return v.list.SetItems(items)
}

// loaded handles a settled fetch. Stale responses were discarded by the
// controller and leave the view as is.
func (v *listView) loaded(err error) tea.Cmd {
	if errors.Is(err, shared.ErrStaleResponse) {
		return nil
	}
	v.err = err
	return v.refresh()
}

func (v *listView) selected() (models.Movie, bool) {
	item, ok := v.list.SelectedItem().(movieItem)
	if !ok {
		return models.Movie{}, false
	}
	return item.movie, true
}

func (v *listView) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if v.searching {
		v.search, cmd = v.search.Update(msg)
		return cmd
	}
	v.list, cmd = v.list.Update(msg)
	return cmd
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.movies

	if _, ok := v.ctrl.PendingDelete(); ok {
		switch {
		case key.Matches(msg, m.keys.yes):
			return m, m.deleteConfirmed()
		case key.Matches(msg, m.keys.no):
			v.ctrl.CancelDelete()
		}
		return m, nil
	}

	if v.searching {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			v.searching = false
			v.search.Blur()
			return m, nil
		}
		before := v.search.Value()
		cmd := v.update(msg)
		if after := v.search.Value(); after != before {
			return m, tea.Batch(cmd, m.searchFor(after))
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.search):
		v.searching = true
		return m, v.search.Focus()
	case key.Matches(msg, m.keys.add):
		return m, m.navigate(routes.PathAdd, nil)
	case key.Matches(msg, m.keys.edit):
		if movie, ok := v.selected(); ok {
			return m, m.navigate(routes.EditPath(movie.ID), &movie)
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if movie, ok := v.selected(); ok {
			v.ctrl.ConfirmDelete(movie.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	}

	cmd := v.update(msg)
	return m, tea.Batch(cmd, m.rowVisible())
}

// rowVisible reports the cursor row to the controller so reaching the last row
// loads the next page.
func (m *Model) rowVisible() tea.Cmd {
	v := m.movies
	index := v.list.Index()
	if index != len(v.list.Items())-1 || !v.ctrl.HasMore() || v.ctrl.Loading() {
		return nil
	}

	ctrl := v.ctrl
	return func() tea.Msg {
		return pageLoadedMsg{err: ctrl.OnRowVisible(m.ctx, index)}
	}
}

func (m *Model) fetchPage() tea.Cmd {
	ctrl := m.movies.ctrl
	return func() tea.Msg {
		return pageLoadedMsg{err: ctrl.Fetch(m.ctx, 1, "")}
	}
}

func (m *Model) searchFor(term string) tea.Cmd {
	ctrl := m.movies.ctrl
	return func() tea.Msg {
		return pageLoadedMsg{err: ctrl.Search(m.ctx, term)}
	}
}

func (m *Model) deleteConfirmed() tea.Cmd {
	ctrl := m.movies.ctrl
	return func() tea.Msg {
		return deletedMsg{err: ctrl.DeleteConfirmed(m.ctx)}
	}
}

func (m *Model) renderList() string {
	v := m.movies
	var b strings.Builder

	b.WriteString(v.search.View())
	b.WriteString("\n\n")

	if len(v.list.Items()) == 0 {
		switch {
		case v.ctrl.Loading():
			b.WriteString(styles.help.Render("Loading movies..."))
		case v.ctrl.SearchTerm() != "":
			b.WriteString(styles.help.Render(fmt.Sprintf("No movies match %q", v.ctrl.SearchTerm())))
		default:
			b.WriteString(styles.help.Render("No movies yet. Press a to add one."))
		}
	} else {
		b.WriteString(v.list.View())
	}

	switch {
	case v.err != nil:
		b.WriteString("\n" + styles.err.Render(catalog.MsgListFailed))
	case v.ctrl.Loading() && len(v.list.Items()) > 0:
		b.WriteString("\n" + styles.help.Render("Loading more..."))
	case !v.ctrl.HasMore() && len(v.list.Items()) > 0:
		b.WriteString("\n" + styles.help.Render(fmt.Sprintf("%d records", len(v.list.Items()))))
	}

	if id, ok := v.ctrl.PendingDelete(); ok {
		title := id.String()
		if movie, found := v.ctrl.Find(id); found {
			title = movie.Title
		}
		prompt := fmt.Sprintf("Delete %q?\nThis cannot be undone.\n\n%s", title, m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no}))
		b.WriteString("\n\n" + styles.dialog.Render(prompt))
		return b.String()
	}

	helpKeys := []key.Binding{m.keys.search, m.keys.add, m.keys.edit, m.keys.remove, m.keys.logout, m.keys.quit}
	b.WriteString("\n\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}
