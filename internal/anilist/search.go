package anilist

import (
	"context"
	"fmt"
	"strings"
)

// SearchResult is a trimmed media record for autocomplete and suggestions.
type SearchResult struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	CoverURL string `json:"cover_url,omitempty"`
	Chapters *int   `json:"chapters"`
	Episodes *int   `json:"episodes"`
}

type searchMedia struct {
	Media
	Chapters *int `json:"chapters"`
	Episodes *int `json:"episodes"`
}

type pageEnvelope struct {
	Data *struct {
		Page *struct {
			Media []searchMedia `json:"media"`
		} `json:"Page"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

const searchQuery = `
query ($search: String, $type: MediaType, $perPage: Int) {
  Page(perPage: $perPage) {
    media(search: $search, type: $type, sort: POPULARITY_DESC) {
      id
      type
      title { romaji english native }
      coverImage { medium large }
      chapters
      episodes
    }
  }
}`

// SearchTitles runs an unauthenticated search against the public API.
// Degrades gracefully: any failure yields a single echo result so callers
// never render an empty panel because AniList hiccuped.
func (c *Client) SearchTitles(ctx context.Context, queryText, mediaType string, perPage int) []SearchResult {
	queryText = strings.TrimSpace(queryText)
	if len(queryText) < 2 {
		return nil
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > 20 {
		perPage = 20
	}

	body := map[string]any{
		"query": searchQuery,
		"variables": map[string]any{
			"search":  queryText,
			"type":    strings.ToUpper(mediaType),
			"perPage": perPage,
		},
	}

	var env pageEnvelope
	if err := c.post(ctx, "", body, &env); err != nil || len(env.Errors) > 0 ||
		env.Data == nil || env.Data.Page == nil {
		return []SearchResult{{ID: "0", Title: queryText, Type: mediaType}}
	}

	out := make([]SearchResult, 0, len(env.Data.Page.Media))
	for _, m := range env.Data.Page.Media {
		cover := ""
		if m.CoverImage != nil {
			// search results are thumbnails, prefer the smaller variant
			if m.CoverImage.Medium != nil && *m.CoverImage.Medium != "" {
				cover = *m.CoverImage.Medium
			} else if m.CoverImage.Large != nil && *m.CoverImage.Large != "" {
				cover = *m.CoverImage.Large
			}
		}
		out = append(out, SearchResult{
			ID:       fmt.Sprintf("%d", m.ID),
			Title:    m.BestTitle(),
			Type:     mediaType,
			CoverURL: cover,
			Chapters: m.Chapters,
			Episodes: m.Episodes,
		})
	}
	return out
}
