package library

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"animetrack/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, item models.LibraryItem) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO library_items (id, user_id, title, type, source, cover_url, status, progress)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.UserID, item.Title, item.Type, item.Source, item.CoverURL, item.Status, item.Progress)
	if err != nil {
		return fmt.Errorf("create library item: %w", err)
	}
	return nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]models.LibraryItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, title, type, source, cover_url, status, progress, created_at, updated_at
		FROM library_items
		WHERE user_id = ?
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	defer rows.Close()

	out := make([]models.LibraryItem, 0)
	for rows.Next() {
		var it models.LibraryItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.Title, &it.Type, &it.Source,
			&it.CoverURL, &it.Status, &it.Progress, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan library row: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, userID, id string) (*models.LibraryItem, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, title, type, source, cover_url, status, progress, created_at, updated_at
		FROM library_items
		WHERE id = ? AND user_id = ?
	`, id, userID)

	var it models.LibraryItem
	if err := row.Scan(&it.ID, &it.UserID, &it.Title, &it.Type, &it.Source,
		&it.CoverURL, &it.Status, &it.Progress, &it.CreatedAt, &it.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get library item: %w", err)
	}
	return &it, nil
}

// Update changes status and/or progress (nil means leave alone) and refreshes
// updated_at.
func (r *Repo) Update(ctx context.Context, userID, id string, status *string, progress *int) (bool, error) {
	it, err := r.Get(ctx, userID, id)
	if err != nil {
		return false, err
	}
	if it == nil {
		return false, nil
	}

	if status != nil {
		it.Status = *status
	}
	if progress != nil {
		it.Progress = *progress
	}

	_, err = r.DB.ExecContext(ctx, `
		UPDATE library_items
		SET status = ?, progress = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, it.Status, it.Progress, time.Now().UTC(), id, userID)
	if err != nil {
		return false, fmt.Errorf("update library item: %w", err)
	}
	return true, nil
}

func (r *Repo) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM library_items
		WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete library item: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Exists reports whether the owner already tracks (title, type, source).
func (r *Repo) Exists(ctx context.Context, userID, title, mtype, source string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `
		SELECT 1 FROM library_items
		WHERE user_id = ? AND title = ? AND type = ? AND source = ?
		LIMIT 1
	`, userID, title, mtype, source).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check library item: %w", err)
	}
	return true, nil
}

type Summary struct {
	Total    int            `json:"total"`
	ByType   map[string]int `json:"by_type"`
	ByStatus map[string]int `json:"by_status"`
}

func (r *Repo) Summarize(ctx context.Context, userID string) (Summary, error) {
	s := Summary{
		ByType:   map[string]int{"anime": 0, "manga": 0},
		ByStatus: map[string]int{},
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT type, status FROM library_items WHERE user_id = ?
	`, userID)
	if err != nil {
		return s, fmt.Errorf("summarize library: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mtype, status string
		if err := rows.Scan(&mtype, &status); err != nil {
			return s, fmt.Errorf("scan summary row: %w", err)
		}
		s.Total++
		s.ByType[mtype]++
		s.ByStatus[status]++
	}
	if err := rows.Err(); err != nil {
		return s, fmt.Errorf("rows err: %w", err)
	}
	return s, nil
}
