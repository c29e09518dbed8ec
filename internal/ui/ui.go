package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinedex/internal/catalog"
	"github.com/desertthunder/cinedex/internal/models"
	"github.com/desertthunder/cinedex/internal/notify"
	"github.com/desertthunder/cinedex/internal/routes"
	"github.com/desertthunder/cinedex/internal/session"
)

const toastTTL = 4 * time.Second

// Options configures a [Model].
type Options struct {
	Session *session.Store
	// Deps supplies the movie service and image store. Auth is always the session
	// and the toast channel is added to Notifier.
	Deps      catalog.Deps
	List      catalog.ListOpts
	StartPath string
	Logger    *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	session  *session.Store
	deps     catalog.Deps
	listOpts catalog.ListOpts
	logger   *log.Logger
	toasts   *notify.Channel

	route   routes.Route
	waiting bool
	pending navigateMsg
	width   int
	height  int

	auth   *authView
	movies *listView
	form   *formView

	toast    *notify.Notification
	toastSeq int
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.StartPath == "" {
		opts.StartPath = routes.PathMovies
	}

	toasts := notify.NewChannel(16)
	deps := opts.Deps
	deps.Auth = opts.Session
	deps.Logger = opts.Logger
	if deps.Notifier != nil {
		deps.Notifier = notify.Multi{deps.Notifier, toasts}
	} else {
		deps.Notifier = toasts
	}

	return &Model{
		ctx:      ctx,
		session:  opts.Session,
		deps:     deps,
		listOpts: opts.List,
		logger:   opts.Logger,
		toasts:   toasts,
		pending:  navigateMsg{path: opts.StartPath},
		waiting:  true,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init restores the persisted session and starts listening for notifications.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.restoreSession(), m.waitForToast())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.movies != nil {
			m.movies.setSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		if m.waiting {
			return m, nil
		}
		switch m.route.View {
		case routes.ViewLogin, routes.ViewRegister:
			return m.handleAuthKeys(msg)
		case routes.ViewList:
			return m.handleListKeys(msg)
		case routes.ViewAdd, routes.ViewEdit:
			return m.handleFormKeys(msg)
		}
		return m, nil

	case sessionRestoredMsg:
		if m.waiting {
			return m, m.navigate(m.pending.path, m.pending.handoff)
		}
		return m, nil

	case navigateMsg:
		return m, m.navigate(msg.path, msg.handoff)

	case toastMsg:
		n := notify.Notification(msg)
		m.toast = &n
		m.toastSeq++
		seq := m.toastSeq
		return m, tea.Batch(m.waitForToast(), tea.Tick(toastTTL, func(time.Time) tea.Msg {
			return toastExpiredMsg{seq: seq}
		}))

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil

	case authDoneMsg:
		if m.auth == nil {
			return m, nil
		}
		m.auth.busy = false
		if msg.err != nil {
			m.auth.err = msg.err
			return m, nil
		}
		return m, m.navigate(routes.PathMovies, nil)

	case pageLoadedMsg:
		if m.movies != nil {
			return m, m.movies.loaded(msg.err)
		}
		return m, nil

	case deletedMsg:
		if m.movies != nil {
			return m, m.movies.refresh()
		}
		return m, nil

	case formLoadedMsg:
		if m.form != nil {
			m.form.loaded(msg.err)
		}
		return m, nil

	case imageReadyMsg:
		if m.form != nil {
			m.form.imageReady(msg)
		}
		return m, nil

	case submittedMsg:
		if m.form == nil {
			return m, nil
		}
		if msg.err != nil {
			m.form.err = msg.err
			return m, nil
		}
		return m, m.navigate(routes.PathMovies, nil)
	}

	return m.updateInputs(msg)
}

// navigate moves to path after consulting the route guard. Protected routes
// requested while the session is loading are parked until it is restored.
func (m *Model) navigate(path string, handoff *models.Movie) tea.Cmd {
	route, err := routes.Resolve(path)
	if err != nil {
		m.logger.Warn("unknown route", "path", path, "error", err)
		route = routes.MustResolve(routes.PathMovies)
	}

	outcome := routes.Guard(m.session, route)
	m.logger.Debug("navigate", "path", route.Path, "decision", outcome.Decision)

	switch outcome.Decision {
	case routes.Wait:
		m.waiting = true
		m.pending = navigateMsg{path: route.Path, handoff: handoff}
		return nil
	case routes.Redirect:
		return m.navigate(outcome.Target, nil)
	}

	m.waiting = false
	m.pending = navigateMsg{}
	m.route = route
	m.auth, m.movies, m.form = nil, nil, nil

	switch route.View {
	case routes.ViewLogin, routes.ViewRegister:
		m.auth = newAuthView(route.View == routes.ViewRegister)
		return m.auth.focusCmd()
	case routes.ViewList:
		m.movies = newListView(catalog.NewListController(m.deps, m.listOpts), m.width-4, m.height-8)
		return m.fetchPage()
	case routes.ViewAdd:
		m.form = newFormView(catalog.NewCreateForm(m.deps))
		return m.form.focusCmd()
	case routes.ViewEdit:
		m.form = newFormView(catalog.NewEditForm(m.deps, route.ID, handoff))
		return tea.Batch(m.loadForm(), m.form.focusCmd())
	}
	return nil
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.auth != nil:
		cmd = m.auth.updateFocused(msg)
	case m.movies != nil:
		cmd = m.movies.update(msg)
	case m.form != nil:
		cmd = m.form.updateFocused(msg)
	}
	return m, cmd
}

// View renders the UI based on the current route.
func (m *Model) View() string {
	var body string
	switch {
	case m.waiting:
		body = styles.help.Render("Loading session...")
	case m.auth != nil:
		body = m.renderAuth()
	case m.movies != nil:
		body = m.renderList()
	case m.form != nil:
		body = m.renderForm()
	}

	if toast := m.renderToast(); toast != "" {
		return body + "\n\n" + toast
	}
	return body
}

func (m *Model) renderToast() string {
	if m.toast == nil {
		return ""
	}
	switch m.toast.Level {
	case notify.LevelSuccess:
		return styles.ok.Render("✓ " + m.toast.Message)
	case notify.LevelError:
		return styles.err.Render("✗ " + m.toast.Message)
	default:
		return styles.warn.Render(m.toast.Message)
	}
}

func (m *Model) restoreSession() tea.Cmd {
	return func() tea.Msg {
		if m.session.Loading() {
			m.session.Restore(m.ctx)
		}
		return sessionRestoredMsg{}
	}
}

func (m *Model) waitForToast() tea.Cmd {
	toasts := m.toasts.C()
	return func() tea.Msg {
		select {
		case n := <-toasts:
			return toastMsg(n)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) logout() tea.Cmd {
	return func() tea.Msg {
		m.session.Logout(m.ctx)
		return navigateMsg{path: routes.PathLogin}
	}
}

func errorLine(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 && i+2 < len(msg) {
		msg = msg[i+2:]
	}
	return styles.err.Render(fmt.Sprintf("Error: %s", msg))
}
