// Package notify carries user-facing notifications out of the application
// services. UIs surface them as toasts; headless consumers log them.
package notify

import (
	"log/slog"
	"sync"
)

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Notifier receives user-visible messages from application services.
type Notifier interface {
	Success(message string)
	Error(message string)
	Warning(message string)
}

// Noop is a safe default when callers do not need notifications.
var Noop Notifier = noopNotifier{}

type noopNotifier struct{}

func (noopNotifier) Success(string) {}
func (noopNotifier) Error(string)   {}
func (noopNotifier) Warning(string) {}

// SlogNotifier writes notifications to a structured logger.
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier wraps the provided logger, defaulting to slog.Default.
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogNotifier{logger: logger}
}

func (n *SlogNotifier) Success(message string) {
	n.logger.Info(message, slog.String("notification", string(LevelSuccess)))
}

func (n *SlogNotifier) Error(message string) {
	n.logger.Error(message, slog.String("notification", string(LevelError)))
}

func (n *SlogNotifier) Warning(message string) {
	n.logger.Warn(message, slog.String("notification", string(LevelWarning)))
}

// Notification is a recorded message, used by tests and by UIs that drain
// notifications on their own cadence.
type Notification struct {
	Level   Level
	Message string
}

// Recorder accumulates notifications for later inspection.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Success(message string) { r.append(LevelSuccess, message) }
func (r *Recorder) Error(message string)   { r.append(LevelError, message) }
func (r *Recorder) Warning(message string) { r.append(LevelWarning, message) }

func (r *Recorder) append(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, Notification{Level: level, Message: message})
}

// All returns a copy of the recorded notifications in arrival order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}

// ByLevel filters recorded notifications by level.
func (r *Recorder) ByLevel(level Level) []Notification {
	var out []Notification
	for _, n := range r.All() {
		if n.Level == level {
			out = append(out, n)
		}
	}
	return out
}
