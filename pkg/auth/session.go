package auth

import (
	"context"
	"errors"
	"sync"
)

// Session holds the access token for the lifetime of a run. The token is
// requested from its source on first use and never written anywhere.
type Session struct {
	mu     sync.Mutex
	source TokenSource
	token  string
}

// NewSession creates a session backed by source
func NewSession(source TokenSource) *Session {
	return &Session{source: source}
}

// Token returns the cached token, asking the source when none is cached.
// A blank result is returned without error and is not cached, so a later
// call asks again.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		return s.token, nil
	}
	if s.source == nil {
		return "", nil
	}

	t, err := s.source.Token(ctx)
	if err != nil && !errors.Is(err, ErrNoToken) {
		return "", err
	}
	s.token = Normalize(t)
	return s.token, nil
}
