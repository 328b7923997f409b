package notify

import (
	"context"

	"hotel_ops/internal/logger"
)

// LogNotifier writes reminders to the structured log.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.Named("notify")}
}

func (n *LogNotifier) Schedule(_ context.Context, r Reminder) error {
	n.log.Infow("local_notification", "key", r.Key, "title", r.Title, "body", r.Body, "sticky", r.Sticky, "sound", r.Sound)
	return nil
}

func (n *LogNotifier) Dismiss(_ context.Context, key string) error {
	n.log.Infow("local_notification_dismissed", "key", key)
	return nil
}
