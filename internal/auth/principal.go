// SPDX-License-Identifier: MIT

// Package auth resolves the caller's identity from a request's session
// credentials. The identity provider itself is external; this package only
// consumes its session contract.
package auth

import (
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthenticated is returned when no valid session accompanies a request.
var ErrUnauthenticated = errors.New("auth: unauthenticated")

// SessionCookie is the cookie carrying the session token for browser clients.
const SessionCookie = "snapcast_session"

// Principal represents the authenticated identity of a caller.
type Principal struct {
	// ID is the stable, unique identifier for the user.
	ID string
}

// Resolver resolves request headers into an authenticated Principal.
// A nil-session outcome is reported as ErrUnauthenticated.
type Resolver interface {
	Resolve(r *http.Request) (*Principal, error)
}

// StaticResolver maps bearer tokens to user IDs from configuration.
type StaticResolver struct {
	tokens map[string]string
}

// NewStaticResolver creates a Resolver over a token -> user ID mapping.
func NewStaticResolver(tokens map[string]string) *StaticResolver {
	return &StaticResolver{tokens: tokens}
}

// Resolve checks the Authorization header first, then the session cookie.
func (s *StaticResolver) Resolve(r *http.Request) (*Principal, error) {
	token := bearerToken(r)
	if token == "" {
		if c, err := r.Cookie(SessionCookie); err == nil {
			token = c.Value
		}
	}
	if token == "" {
		return nil, ErrUnauthenticated
	}
	userID, ok := s.tokens[token]
	if !ok {
		return nil, ErrUnauthenticated
	}
	return &Principal{ID: userID}, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
