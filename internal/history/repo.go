package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"biodex/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Add(ctx context.Context, e models.HistoryEntry) error {
	at := e.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO history (session_id, mode, term, latitude, longitude, provider, results, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.SessionID, e.Mode, e.Term, e.Latitude, e.Longitude, e.Provider, e.Results, at)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// List returns the session's queries, newest first.
func (r *Repo) List(ctx context.Context, sessionID string, limit, offset int) ([]models.HistoryEntry, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM history WHERE session_id = ?
	`, sessionID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count history: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, session_id, mode, term, latitude, longitude, provider, results, at
		FROM history
		WHERE session_id = ?
		ORDER BY at DESC, id DESC
		LIMIT ? OFFSET ?
	`, sessionID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := make([]models.HistoryEntry, 0, limit)
	for rows.Next() {
		var e models.HistoryEntry
		var term sql.NullString
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Mode, &term, &lat, &lon, &e.Provider, &e.Results, &e.At); err != nil {
			return nil, 0, fmt.Errorf("scan history row: %w", err)
		}
		e.Term = term.String
		e.Latitude = lat.Float64
		e.Longitude = lon.Float64
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}
	return out, total, nil
}

func (r *Repo) DeleteSession(ctx context.Context, sessionID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM history WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("purge history: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
