// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors the catalog's screens:
//  1. login / register : authenticate against the API and persist the session
//  2. list : browse records with a server-side search box, infinite scroll and delete confirmation
//  3. add / edit : the record form, with an image path that is kept locally
//
// Every screen change goes through [routes.Guard], so protected screens wait for the
// restored session and redirect to login when signed out. Notifications raised by the
// catalog controllers arrive over a [notify.Channel] and are shown as a toast line.
//
// Keyboard navigation uses vim-style bindings on the list (j/k, /, a, e, d, y/n) and
// tab/shift+tab between form inputs, with contextual help from charmbracelet/bubbles/help.
package ui
