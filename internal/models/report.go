package models

import "time"

// Report priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityUrgent = "urgent"
)

// ProblemReport is raised by staff for a room or a general location.
type ProblemReport struct {
	ID              string    `json:"id"`
	RoomNumber      string    `json:"room_number,omitempty"`
	Location        string    `json:"location,omitempty"`
	IsGeneralReport bool      `json:"is_general_report"`
	Description     string    `json:"description"`
	ImageURL        *string   `json:"image_url,omitempty"`
	Priority        string    `json:"priority"`
	EmployeeName    *string   `json:"employee_name,omitempty"`
	Resolved        bool      `json:"resolved"`
	ReportedAt      time.Time `json:"reported_at"`
}
