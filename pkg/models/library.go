package models

import "time"

// LibraryItem is one tracked title in a user's library. Rows come from manual
// adds or from an AniList import; (user_id, title, type, source) is kept unique
// by the import reconciler, not by the schema.
type LibraryItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`   // "anime" | "manga"
	Source    string    `json:"source"` // e.g. "anilist", "manual"
	CoverURL  string    `json:"cover_url,omitempty"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
