// SPDX-License-Identifier: MIT

package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver() *StaticResolver {
	return NewStaticResolver(map[string]string{"tok-a": "alice"})
}

func request(t *testing.T) *http.Request {
	t.Helper()
	r, err := http.NewRequest(http.MethodGet, "http://localhost/api/videos", nil)
	require.NoError(t, err)
	return r
}

func TestResolveBearerToken(t *testing.T) {
	r := request(t)
	r.Header.Set("Authorization", "Bearer tok-a")

	p, err := newResolver().Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.ID)
}

func TestResolveSessionCookie(t *testing.T) {
	r := request(t)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tok-a"})

	p, err := newResolver().Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.ID)
}

func TestResolveBearerTakesPrecedence(t *testing.T) {
	resolver := NewStaticResolver(map[string]string{"tok-a": "alice", "tok-b": "bob"})
	r := request(t)
	r.Header.Set("Authorization", "Bearer tok-b")
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tok-a"})

	p, err := resolver.Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, "bob", p.ID)
}

func TestResolveRejections(t *testing.T) {
	resolver := newResolver()

	_, err := resolver.Resolve(request(t))
	assert.ErrorIs(t, err, ErrUnauthenticated, "no credentials")

	r := request(t)
	r.Header.Set("Authorization", "Bearer unknown")
	_, err = resolver.Resolve(r)
	assert.ErrorIs(t, err, ErrUnauthenticated, "unknown token")

	r = request(t)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	_, err = resolver.Resolve(r)
	assert.ErrorIs(t, err, ErrUnauthenticated, "non-bearer scheme")
}
