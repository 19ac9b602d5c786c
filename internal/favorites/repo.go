package favorites

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

// Add stores a favorite. Adding the same name again refreshes its details
// but keeps the original added_at.
func (r *Repo) Add(ctx context.Context, f models.Favorite) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO favorites (session_id, name, scientific_name, photo_url, added_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id, name) DO UPDATE SET
			scientific_name = excluded.scientific_name,
			photo_url = excluded.photo_url
	`, f.SessionID, f.Name, f.ScientificName, f.PhotoURL)
	if err != nil {
		return fmt.Errorf("upsert favorite: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, sessionID, name string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM favorites
		WHERE session_id = ? AND name = ?
	`, sessionID, name)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) List(ctx context.Context, sessionID string, limit, offset int) ([]models.Favorite, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM favorites WHERE session_id = ?
	`, sessionID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count favorites: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT session_id, name, scientific_name, photo_url, added_at
		FROM favorites
		WHERE session_id = ?
		ORDER BY added_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, sessionID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	out := make([]models.Favorite, 0, limit)
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan favorite row: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}
	return out, total, nil
}

func (r *Repo) Get(ctx context.Context, sessionID, name string) (*models.Favorite, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT session_id, name, scientific_name, photo_url, added_at
		FROM favorites
		WHERE session_id = ? AND name = ?
	`, sessionID, name)

	f, err := scanFavorite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	return &f, nil
}

func (r *Repo) DeleteSession(ctx context.Context, sessionID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM favorites WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("purge favorites: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFavorite(s scanner) (models.Favorite, error) {
	var f models.Favorite
	var sci, photo sql.NullString
	var added time.Time
	if err := s.Scan(&f.SessionID, &f.Name, &sci, &photo, &added); err != nil {
		return models.Favorite{}, err
	}
	f.ScientificName = sci.String
	f.PhotoURL = photo.String
	f.AddedAt = added
	return f, nil
}
