package notify

import (
	"time"

	"github.com/charmbracelet/log"
)

// Level classifies a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a single toast.
type Notification struct {
	Level   Level
	Message string
	At      time.Time
}

// Notifier receives notifications. Implementations must not block.
type Notifier interface {
	Notify(n Notification)
}

// Success sends a success notification to n.
func Success(n Notifier, message string) {
	send(n, LevelSuccess, message)
}

// Error sends an error notification to n.
func Error(n Notifier, message string) {
	send(n, LevelError, message)
}

// Info sends an informational notification to n.
func Info(n Notifier, message string) {
	send(n, LevelInfo, message)
}

func send(n Notifier, level Level, message string) {
	if n == nil {
		return
	}
	n.Notify(Notification{Level: level, Message: message, At: time.Now()})
}

// Channel buffers notifications for a consumer such as the TUI event loop.
type Channel struct {
	ch chan Notification
}

// NewChannel creates a [Channel] holding up to size pending notifications.
func NewChannel(size int) *Channel {
	if size <= 0 {
		size = 1
	}
	return &Channel{ch: make(chan Notification, size)}
}

// Notify enqueues n without blocking. When the buffer is full n is dropped.
func (c *Channel) Notify(n Notification) {
	select {
	case c.ch <- n:
	default:
	}
}

// C returns the receive side of the channel.
func (c *Channel) C() <-chan Notification {
	return c.ch
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a [LogNotifier].
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(n Notification) {
	switch n.Level {
	case LevelError:
		l.logger.Error(n.Message)
	case LevelSuccess:
		l.logger.Info(n.Message, "status", n.Level)
	default:
		l.logger.Info(n.Message)
	}
}

// Multi forwards every notification to each notifier in order.
type Multi []Notifier

func (m Multi) Notify(n Notification) {
	for _, target := range m {
		if target != nil {
			target.Notify(n)
		}
	}
}

type discard struct{}

func (discard) Notify(Notification) {}

// Discard drops every notification.
var Discard Notifier = discard{}
