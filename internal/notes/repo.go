package notes

import (
	"context"
	"database/sql"
	"errors"
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

func (r *Repo) Create(ctx context.Context, sessionID, animal, text string) (*models.Note, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO notes (session_id, animal, text)
		VALUES (?, ?, ?)
	`, sessionID, animal, text)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return r.GetByID(ctx, id, sessionID)
}

// GetByID only finds notes owned by sessionID.
func (r *Repo) GetByID(ctx context.Context, id int64, sessionID string) (*models.Note, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, session_id, animal, text, created_at
		FROM notes
		WHERE id = ? AND session_id = ?
	`, id, sessionID)

	var n models.Note
	var created time.Time
	if err := row.Scan(&n.ID, &n.SessionID, &n.Animal, &n.Text, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan note: %w", err)
	}
	n.CreatedAt = created
	return &n, nil
}

// List returns the session's notes, newest first, optionally for one animal.
func (r *Repo) List(ctx context.Context, sessionID, animal string, limit, offset int) ([]models.Note, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var rows *sql.Rows
	var err error
	if animal == "" {
		rows, err = r.DB.QueryContext(ctx, `
			SELECT id, session_id, animal, text, created_at
			FROM notes
			WHERE session_id = ?
			ORDER BY created_at DESC, id DESC
			LIMIT ? OFFSET ?
		`, sessionID, limit, offset)
	} else {
		rows, err = r.DB.QueryContext(ctx, `
			SELECT id, session_id, animal, text, created_at
			FROM notes
			WHERE session_id = ? AND animal = ?
			ORDER BY created_at DESC, id DESC
			LIMIT ? OFFSET ?
		`, sessionID, animal, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	out := make([]models.Note, 0, limit)
	for rows.Next() {
		var n models.Note
		var created time.Time
		if err := rows.Scan(&n.ID, &n.SessionID, &n.Animal, &n.Text, &created); err != nil {
			return nil, fmt.Errorf("scan note row: %w", err)
		}
		n.CreatedAt = created
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id int64, sessionID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM notes
		WHERE id = ? AND session_id = ?
	`, id, sessionID)
	if err != nil {
		return false, fmt.Errorf("delete note: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) DeleteSession(ctx context.Context, sessionID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM notes WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("purge notes: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
