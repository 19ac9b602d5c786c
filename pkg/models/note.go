package models

import "time"

type Note struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Animal    string    `json:"animal"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
