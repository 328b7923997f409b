package models

import "time"

// Maintenance actions.
const (
	MaintenanceDone    = "done"
	MaintenanceSkipped = "skipped"
)

// MaintenanceLog is an append-only record of a maintenance action.
type MaintenanceLog struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	RoomNumber string    `json:"room_number"`
	Action     string    `json:"action"` // done | skipped
	LoggedAt   time.Time `json:"logged_at"`
}

// MaintenanceStatus is the derived due state of a room.
type MaintenanceStatus struct {
	RoomID           string     `json:"room_id"`
	RoomNumber       string     `json:"room_number"`
	LastMaintenance  *time.Time `json:"last_maintenance,omitempty"`
	DaysSinceLast    int        `json:"days_since_last"`
	DaysLeft         int        `json:"days_left"`
	NeedsMaintenance bool       `json:"needs_maintenance"`
	ReminderDue      bool       `json:"reminder_due"`
}
