package models

import "time"

// DeviceRegistration identifies one app installation for push targeting.
type DeviceRegistration struct {
	DeviceID      string         `json:"device_id"`
	Token         string         `json:"token"`
	Available     bool           `json:"available"`
	CreatedAt     time.Time      `json:"created_at"`
	CustomMessage *CustomMessage `json:"custom_message,omitempty"`
}

// CustomMessage is an operator-set message shown on a device.
type CustomMessage struct {
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}
