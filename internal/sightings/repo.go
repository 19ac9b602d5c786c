package sightings

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

func (r *Repo) Add(ctx context.Context, s models.Sighting) (*models.Sighting, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO sightings (session_id, animal, seen_on, hotspot)
		VALUES (?, ?, ?, ?)
	`, s.SessionID, s.Animal, s.SeenOn, s.Hotspot)
	if err != nil {
		return nil, fmt.Errorf("insert sighting: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return r.Get(ctx, id, s.SessionID)
}

func (r *Repo) Get(ctx context.Context, id int64, sessionID string) (*models.Sighting, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, session_id, animal, seen_on, hotspot, created_at
		FROM sightings
		WHERE id = ? AND session_id = ?
	`, id, sessionID)

	s, err := scanSighting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sighting: %w", err)
	}
	return &s, nil
}

// List returns the session's sightings in calendar order. month ("YYYY-MM")
// narrows the result to one month.
func (r *Repo) List(ctx context.Context, sessionID, month string, limit, offset int) ([]models.Sighting, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	prefix := "%"
	if month != "" {
		prefix = month + "-%"
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sightings WHERE session_id = ? AND seen_on LIKE ?
	`, sessionID, prefix).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sightings: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, session_id, animal, seen_on, hotspot, created_at
		FROM sightings
		WHERE session_id = ? AND seen_on LIKE ?
		ORDER BY seen_on ASC, id ASC
		LIMIT ? OFFSET ?
	`, sessionID, prefix, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list sightings: %w", err)
	}
	defer rows.Close()

	out := make([]models.Sighting, 0, 16)
	for rows.Next() {
		s, err := scanSighting(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan sighting row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}
	return out, total, nil
}

type CalendarDay struct {
	Date    string   `json:"date"`
	Animals []string `json:"animals"`
}

// Calendar groups a month's sightings by day.
func (r *Repo) Calendar(ctx context.Context, sessionID, month string) ([]CalendarDay, error) {
	items, _, err := r.List(ctx, sessionID, month, 500, 0)
	if err != nil {
		return nil, err
	}

	days := make([]CalendarDay, 0, 31)
	for _, s := range items {
		if n := len(days); n > 0 && days[n-1].Date == s.SeenOn {
			days[n-1].Animals = append(days[n-1].Animals, s.Animal)
			continue
		}
		days = append(days, CalendarDay{Date: s.SeenOn, Animals: []string{s.Animal}})
	}
	return days, nil
}

func (r *Repo) DeleteSession(ctx context.Context, sessionID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sightings WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("purge sightings: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSighting(sc scanner) (models.Sighting, error) {
	var s models.Sighting
	var hotspot sql.NullString
	var created time.Time
	if err := sc.Scan(&s.ID, &s.SessionID, &s.Animal, &s.SeenOn, &hotspot, &created); err != nil {
		return models.Sighting{}, err
	}
	s.Hotspot = hotspot.String
	s.CreatedAt = created
	return s, nil
}
