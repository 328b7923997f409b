package models

import "time"

// Session statuses.
const (
	SessionIdle      = "idle"
	SessionRunning   = "running"
	SessionPaused    = "paused"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

// CleaningSession is one continuous, possibly paused, cleaning effort on a room.
type CleaningSession struct {
	RoomID         string        `json:"room_id"`
	RoomNumber     string        `json:"room_number"`
	EmployeeName   string        `json:"employee_name,omitempty"`
	DeviceID       string        `json:"device_id,omitempty"`
	Status         string        `json:"status"`
	StartTime      time.Time     `json:"start_time,omitempty"`
	TotalPaused    time.Duration `json:"total_paused_ns"`
	PauseStart     time.Time     `json:"pause_start,omitempty"`
	ElapsedSeconds int64         `json:"elapsed_seconds"`
}

// Elapsed is wall time since start minus paused time. While paused the
// value is frozen at the pause instant.
func (s CleaningSession) Elapsed(now time.Time) time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	if s.Status == SessionPaused && !s.PauseStart.IsZero() {
		now = s.PauseStart
	}
	d := now.Sub(s.StartTime) - s.TotalPaused
	if d < 0 {
		return 0
	}
	return d
}

// TimerRecord is the locally persisted part of an open session.
type TimerRecord struct {
	RoomID       string        `json:"room_id"`
	StartTime    time.Time     `json:"start_time"`
	TotalPaused  time.Duration `json:"total_paused"`
	PauseStart   time.Time     `json:"pause_start,omitempty"` // zero while running
	EmployeeName string        `json:"employee_name,omitempty"`
	RoomNumber   string        `json:"room_number,omitempty"`
	DeviceID     string        `json:"device_id,omitempty"`
}

// CleaningLog is an immutable record of a completed cleaning.
type CleaningLog struct {
	ID              string    `json:"id"`
	RoomID          string    `json:"room_id"`
	RoomNumber      string    `json:"room_number"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationMinutes int       `json:"duration_minutes"`
	EmployeeName    string    `json:"employee_name"`
	DeviceID        string    `json:"device_id"`
}
