package models

import "time"

type Favorite struct {
	SessionID      string    `json:"session_id"`
	Name           string    `json:"name"`
	ScientificName string    `json:"scientific_name,omitempty"`
	PhotoURL       string    `json:"photo_url,omitempty"`
	AddedAt        time.Time `json:"added_at"`
}
