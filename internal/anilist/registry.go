package anilist

import "sync"

// TokenStore maps a local username to the most recent AniList token response.
// Process-lifetime only in the default implementation; behind an interface so
// a durable store can be swapped in without touching handlers.
type TokenStore interface {
	Set(username string, tok *TokenResponse)
	Get(username string) (*TokenResponse, bool)
	IsConnected(username string) bool
}

type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*TokenResponse
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]*TokenResponse)}
}

// Set overwrites any previous token; last write wins.
func (s *MemoryTokenStore) Set(username string, tok *TokenResponse) {
	s.mu.Lock()
	s.tokens[username] = tok
	s.mu.Unlock()
}

func (s *MemoryTokenStore) Get(username string) (*TokenResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.tokens[username]
	return tok, ok
}

func (s *MemoryTokenStore) IsConnected(username string) bool {
	_, ok := s.Get(username)
	return ok
}
