package listctl

import (
	"errors"
	"log/slog"

	"github.com/simp-lee/casedesk/internal/domain"
)

// Level classifies a Notification.
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

// Notification is one user-visible message. Err keeps the original error so
// views can still reach validation field messages.
type Notification struct {
	Level   Level
	Message string
	Err     error
}

// Notifier receives notifications. Notify is called without the controller
// lock held.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }

// logNotifier is the default notifier.
type logNotifier struct {
	log *slog.Logger
}

func (l logNotifier) Notify(n Notification) {
	attrs := []any{slog.String("level", n.Level.String())}
	if n.Err != nil {
		attrs = append(attrs, slog.Any("error", n.Err))
	}
	l.log.Info(n.Message, attrs...)
}

// userMessage picks a message that is safe to show for err. Server-supplied
// messages are only used for categories where they describe the input.
func userMessage(err error, fallback string) string {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		return fallback
	}
	switch appErr.Code {
	case domain.CodeUnavailable:
		return "cannot reach the server, check the connection and try again"
	case domain.CodeNotFound:
		return "the record no longer exists"
	case domain.CodeUnauthorized:
		return "not signed in or the session has expired"
	case domain.CodeValidation, domain.CodeAlreadyExists:
		if appErr.Message != "" {
			return appErr.Message
		}
	}
	return fallback
}
