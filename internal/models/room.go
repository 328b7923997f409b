package models

import "time"

// Room states as written by housekeeping.
const (
	RoomStateDirty    = "SE"    // occupied / needs service
	RoomStateCheckout = "CO"    // checkout pending
	RoomStateClean    = "CLEAN" // ready
)

// Room types.
const (
	RoomTypeRoom    = "room"
	RoomTypeOffice  = "office"
	RoomTypeLaundry = "laundry"
)

// Room is a physical space that gets cleaned or maintained.
// CleaningBy is non-nil only while a cleaning session is open for the room.
type Room struct {
	ID              string     `json:"id"`
	Number          string     `json:"number"`
	Type            string     `json:"type"`
	State           string     `json:"state"` // SE | CO | CLEAN
	LastCleaned     *time.Time `json:"last_cleaned,omitempty"`
	LastMaintenance *time.Time `json:"last_maintenance,omitempty"`
	CleaningBy      *string    `json:"cleaning_by,omitempty"`
}

// IsValidRoomState reports whether s is one of the known room states.
func IsValidRoomState(s string) bool {
	switch s {
	case RoomStateDirty, RoomStateCheckout, RoomStateClean:
		return true
	}
	return false
}
