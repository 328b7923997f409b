// Package notify is the local notification facility: reminders that are
// shown on the device running a session, as opposed to remote pushes.
package notify

import (
	"context"
	"errors"
)

// Reminder is one local notification. Key groups reminders so they can be
// dismissed together (room id, device id, "maintenance").
type Reminder struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Sticky bool   `json:"sticky,omitempty"`
	Sound  bool   `json:"sound,omitempty"`
}

// LocalNotifier schedules and dismisses local notifications. Delivery is
// best-effort.
type LocalNotifier interface {
	Schedule(ctx context.Context, r Reminder) error
	Dismiss(ctx context.Context, key string) error
}

// Multi forwards to every notifier and joins their errors.
type Multi []LocalNotifier

func (m Multi) Schedule(ctx context.Context, r Reminder) error {
	var errs []error
	for _, n := range m {
		if err := n.Schedule(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Dismiss(ctx context.Context, key string) error {
	var errs []error
	for _, n := range m {
		if err := n.Dismiss(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
