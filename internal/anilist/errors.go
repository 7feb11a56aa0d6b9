package anilist

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidState covers every way a callback state can be bad: wrong
// signature, expired, wrong purpose, missing subject. Callers restart the
// connect flow.
var ErrInvalidState = errors.New("invalid state")

// ErrNotConnected means import was attempted with no stored access token.
var ErrNotConnected = errors.New("anilist not connected")

// UpstreamError is a non-2xx reply from AniList. Status and body are kept
// verbatim so the boundary can surface them for diagnosis.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("anilist: status %d: %s", e.Status, e.Body)
}

// QueryError is a 2xx reply carrying a GraphQL-level errors array.
type QueryError struct {
	Messages []string
}

func (e *QueryError) Error() string {
	return "anilist graphql error: " + strings.Join(e.Messages, "; ")
}
