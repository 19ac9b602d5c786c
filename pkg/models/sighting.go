package models

import "time"

// Sighting is one entry in a session's sighting calendar.
type Sighting struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Animal    string    `json:"animal"`
	SeenOn    string    `json:"seen_on"` // YYYY-MM-DD
	Hotspot   string    `json:"hotspot,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
