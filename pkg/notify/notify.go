// Package notify delivers student-facing notifications. Delivery is
// best-effort: callers never fail an action because a message was lost.
package notify

import (
	"context"

	"go.uber.org/zap"
)

// Message one outgoing notification
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	Body      string
}

// Notifier sends notifications without blocking the caller on delivery
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}

// LogNotifier writes messages to the log. Used when no mail provider is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier builds a LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, msg Message) {
	n.logger.Info("notification",
		zap.String("to", msg.ToAddress),
		zap.String("subject", msg.Subject),
	)
}
