package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	next     key.Binding
	prev     key.Binding
	submit   key.Binding
	back     key.Binding
	search   key.Binding
	add      key.Binding
	edit     key.Binding
	remove   key.Binding
	yes      key.Binding
	no       key.Binding
	switcher key.Binding
	logout   key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		next:     key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:     key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		edit:     key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		remove:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		switcher: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "login/register")),
		logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.search},
		{k.add, k.edit, k.remove},
		{k.yes, k.no, k.back},
		{k.logout, k.quit},
	}
}
