package models

import "time"

type HistoryEntry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Mode      string    `json:"mode"` // "coordinate" or "text"
	Term      string    `json:"term,omitempty"`
	Latitude  float64   `json:"latitude,omitempty"`
	Longitude float64   `json:"longitude,omitempty"`
	Provider  string    `json:"provider"`
	Results   int       `json:"results"`
	At        time.Time `json:"at"`
}
