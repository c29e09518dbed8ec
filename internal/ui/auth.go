package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cinedex/internal/routes"
)

var errCredentialsRequired = errors.New("email and password are required")

// authView holds the login and register inputs. Register adds a name input.
type authView struct {
	register bool
	inputs   []textinput.Model
	focus    int
	busy     bool
	err      error
}

func newAuthView(register bool) *authView {
	labels := []string{"Email", "Password"}
	if register {
		labels = append([]string{"Name"}, labels...)
	}

	inputs := make([]textinput.Model, len(labels))
	for i, label := range labels {
		ti := textinput.New()
		ti.Prompt = fmt.Sprintf("%-10s", label+":")
		ti.Placeholder = strings.ToLower(label)
		ti.CharLimit = 128
		if label == "Password" {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		inputs[i] = ti
	}
	inputs[0].Focus()

	return &authView{register: register, inputs: inputs}
}

func (a *authView) focusCmd() tea.Cmd {
	return textinput.Blink
}

func (a *authView) value(label int) string {
	return strings.TrimSpace(a.inputs[label].Value())
}

// credentials returns name, email and password. Name is empty on the login screen.
func (a *authView) credentials() (string, string, string) {
	if a.register {
		return a.value(0), a.value(1), a.inputs[2].Value()
	}
	return "", a.value(0), a.inputs[1].Value()
}

func (a *authView) move(delta int) tea.Cmd {
	a.inputs[a.focus].Blur()
	a.focus = (a.focus + delta + len(a.inputs)) % len(a.inputs)
	return a.inputs[a.focus].Focus()
}

func (a *authView) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	a.inputs[a.focus], cmd = a.inputs[a.focus].Update(msg)
	return cmd
}

func (m *Model) handleAuthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := m.auth
	if a.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.switcher):
		if a.register {
			return m, m.navigate(routes.PathLogin, nil)
		}
		return m, m.navigate(routes.PathRegister, nil)
	case key.Matches(msg, m.keys.next):
		return m, a.move(1)
	case key.Matches(msg, m.keys.prev):
		return m, a.move(-1)
	case key.Matches(msg, m.keys.submit):
		if a.focus < len(a.inputs)-1 {
			return m, a.move(1)
		}
		return m, m.submitAuth()
	}

	a.err = nil
	return m, a.updateFocused(msg)
}

func (m *Model) submitAuth() tea.Cmd {
	a := m.auth
	name, email, password := a.credentials()
	if email == "" || password == "" || (a.register && name == "") {
		a.err = errCredentialsRequired
		return nil
	}

	a.busy, a.err = true, nil
	register := a.register
	return func() tea.Msg {
		if register {
			return authDoneMsg{err: m.session.Register(m.ctx, name, email, password)}
		}
		return authDoneMsg{err: m.session.Login(m.ctx, email, password)}
	}
}

func (m *Model) renderAuth() string {
	a := m.auth
	title := "Sign in"
	other := "ctrl+n to create an account"
	if a.register {
		title = "Create an account"
		other = "ctrl+n to sign in"
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")
	for _, in := range a.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}

	switch {
	case a.busy:
		b.WriteString("\n" + styles.help.Render("Signing in..."))
	case a.err != nil:
		b.WriteString("\n" + errorLine(a.err))
	}

	helpKeys := []key.Binding{m.keys.next, m.keys.submit, m.keys.quit}
	b.WriteString("\n\n" + styles.help.Render(other) + "\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}
