package anilist

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"animetrack/internal/auth"
)

// Source tag written on every imported row; dedup keys on it.
const Source = "anilist"

// Importer reconciles remote list entries into the local library. Duplicate
// entries (same owner, title, type, anilist source) are skipped; everything
// new is inserted inside one transaction, so a partial failure leaves the
// library untouched and a retried import only adds what is still missing.
type Importer struct {
	DB    *sql.DB
	Users *auth.Repo
}

func NewImporter(db *sql.DB, users *auth.Repo) *Importer {
	return &Importer{DB: db, Users: users}
}

// Import writes the non-duplicate entries of groups into username's library
// and returns how many rows were created. mediaType ("ANIME"/"MANGA") is the
// fallback when an entry's own media metadata carries no type.
func (im *Importer) Import(ctx context.Context, username string, groups []ListGroup, mediaType string) (int, error) {
	owner, err := im.Users.EnsureUser(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("resolve owner: %w", err)
	}

	tx, err := im.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	imported := 0
	for _, group := range groups {
		for _, entry := range group.Entries {
			title := entry.Media.BestTitle()
			cover := entry.Media.BestCover()

			status := "planning"
			if entry.Status != nil && *entry.Status != "" {
				status = strings.ToLower(*entry.Status)
			}

			progress := 0
			if entry.Progress != nil {
				progress = *entry.Progress
			}

			mtype := mediaType
			if entry.Media != nil && entry.Media.Type != "" {
				mtype = entry.Media.Type
			}
			mtype = strings.ToLower(mtype)

			// existence checks run inside the tx, so entries repeated
			// within the same payload dedup against each other too
			var exists bool
			exists, err = rowExists(ctx, tx, owner.ID, title, mtype)
			if err != nil {
				return 0, err
			}
			if exists {
				continue
			}

			_, err = tx.ExecContext(ctx, `
				INSERT INTO library_items (id, user_id, title, type, source, cover_url, status, progress)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, uuid.NewString(), owner.ID, title, mtype, Source, cover, status, progress)
			if err != nil {
				err = fmt.Errorf("insert imported item: %w", err)
				return 0, err
			}
			imported++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return imported, nil
}

func rowExists(ctx context.Context, tx *sql.Tx, userID, title, mtype string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `
		SELECT 1 FROM library_items
		WHERE user_id = ? AND title = ? AND type = ? AND source = ?
		LIMIT 1
	`, userID, title, mtype, Source).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check duplicate: %w", err)
	}
	return true, nil
}
