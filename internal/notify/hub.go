package notify

import (
	"context"

	"hotel_ops/internal/realtime"
)

// HubNotifier forwards reminders to connected WebSocket clients.
type HubNotifier struct {
	hub *realtime.Hub
}

func NewHubNotifier(hub *realtime.Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) Schedule(_ context.Context, r Reminder) error {
	n.hub.Publish(realtime.Event{Topic: realtime.TopicNotifications, Type: "scheduled", Key: r.Key, Data: r})
	return nil
}

func (n *HubNotifier) Dismiss(_ context.Context, key string) error {
	n.hub.Publish(realtime.Event{Topic: realtime.TopicNotifications, Type: "dismissed", Key: key})
	return nil
}
