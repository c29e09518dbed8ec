// Package notify delivers short-lived user notifications (toasts).
//
// Controllers report outcomes through the [Notifier] interface and never block on
// delivery. The TUI drains a [Channel] and renders the newest message, the CLI
// writes them through a [LogNotifier], and [Multi] fans out to both.
//
// # Delivery
//
// [Channel.Notify] uses select with default, so a full buffer drops the
// notification instead of stalling the caller.
package notify
