package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultGraphQLURL = "https://graphql.anilist.co"

// Untitled is stored when a media entry has no title variant at all.
const Untitled = "Untitled"

// MediaTitle holds the title variants AniList returns. Any of them can be
// null upstream, hence pointers.
type MediaTitle struct {
	Romaji  *string `json:"romaji"`
	English *string `json:"english"`
	Native  *string `json:"native"`
}

type CoverImage struct {
	Large  *string `json:"large"`
	Medium *string `json:"medium"`
}

type Media struct {
	ID         int         `json:"id"`
	Title      *MediaTitle `json:"title"`
	Type       string      `json:"type"`
	CoverImage *CoverImage `json:"coverImage"`
	SiteURL    string      `json:"siteUrl"`
}

// BestTitle resolves the display title: english, then romaji, then native,
// then the Untitled placeholder.
func (m *Media) BestTitle() string {
	if m == nil || m.Title == nil {
		return Untitled
	}
	for _, t := range []*string{m.Title.English, m.Title.Romaji, m.Title.Native} {
		if t != nil && *t != "" {
			return *t
		}
	}
	return Untitled
}

// BestCover prefers the large cover variant, falling back to medium.
func (m *Media) BestCover() string {
	if m == nil || m.CoverImage == nil {
		return ""
	}
	if m.CoverImage.Large != nil && *m.CoverImage.Large != "" {
		return *m.CoverImage.Large
	}
	if m.CoverImage.Medium != nil && *m.CoverImage.Medium != "" {
		return *m.CoverImage.Medium
	}
	return ""
}

type ListEntry struct {
	Status   *string `json:"status"`
	Progress *int    `json:"progress"`
	Score    float64 `json:"score"`
	Media    *Media  `json:"media"`
}

// ListGroup is one named list in the viewer's collection ("Watching",
// "Completed", ...).
type ListGroup struct {
	Name    string      `json:"name"`
	Entries []ListEntry `json:"entries"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type collectionEnvelope struct {
	Data *struct {
		Viewer *struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"Viewer"`
		MediaListCollection *struct {
			Lists []ListGroup `json:"lists"`
		} `json:"MediaListCollection"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

const collectionQuery = `
query ($type: MediaType) {
  Viewer { id name }
  MediaListCollection(type: $type) {
    lists {
      name
      entries {
        status
        progress
        score
        media {
          id
          title { romaji english native }
          type
          coverImage { large medium }
          siteUrl
        }
      }
    }
  }
}`

// Client talks GraphQL to AniList.
type Client struct {
	Endpoint  string
	UserAgent string
	Client    *http.Client
}

func NewClient(userAgent string) *Client {
	return &Client{
		Endpoint:  defaultGraphQLURL,
		UserAgent: userAgent,
		Client:    &http.Client{Timeout: 20 * time.Second},
	}
}

// FetchUserLists retrieves the viewer's full collection for one media type
// ("ANIME" or "MANGA"). A 2xx response carrying a GraphQL errors array fails
// with QueryError even when data is also present; a 2xx response without the
// expected collection shape is treated as nothing to import.
func (c *Client) FetchUserLists(ctx context.Context, accessToken, mediaType string) ([]ListGroup, error) {
	body := map[string]any{
		"query":     collectionQuery,
		"variables": map[string]any{"type": mediaType},
	}

	var env collectionEnvelope
	if err := c.post(ctx, accessToken, body, &env); err != nil {
		return nil, err
	}

	if len(env.Errors) > 0 {
		msgs := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, &QueryError{Messages: msgs}
	}

	if env.Data == nil || env.Data.MediaListCollection == nil {
		return nil, nil
	}
	return env.Data.MediaListCollection.Lists, nil
}

func (c *Client) post(ctx context.Context, accessToken string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("graphql request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return &UpstreamError{Status: resp.StatusCode, Body: string(raw)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode graphql response: %w", err)
	}
	return nil
}
