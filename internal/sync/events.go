package sync

import "time"

const (
	FavoriteAdded   = "favorite.add"
	FavoriteRemoved = "favorite.remove"
	NoteAdded       = "note.add"
	NoteDeleted     = "note.delete"
	SightingAdded   = "sighting.add"
)

// Event is pushed to every socket of the session that caused it.
type Event struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Animal    string    `json:"animal,omitempty"`
	ID        int64     `json:"id,omitempty"`
	Data      any       `json:"data,omitempty"`
	At        time.Time `json:"at"`
}
