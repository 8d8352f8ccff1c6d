// SPDX-License-Identifier: MIT

package upload

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(VideoCredential{
			VideoID:   "guid-1",
			UploadURL: "https://stream.example/lib/videos/guid-1",
			AccessKey: "k",
		})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "token-alice")
	cred, err := c.IssueVideoCredential(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer token-alice", gotAuth)
	assert.Equal(t, "guid-1", cred.VideoID)
}

func TestClientRejectsIncompleteCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(VideoCredential{VideoID: "guid-1"})
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL, "t").IssueVideoCredential(context.Background())
	require.Error(t, err)
}

func TestClientErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrAuthentication},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusBadRequest, ErrValidation},
		{http.StatusBadGateway, ErrCommit},
		{http.StatusInternalServerError, ErrCommit},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"status":  "error",
					"message": "nope",
				})
			}))
			t.Cleanup(srv.Close)

			_, err := NewClient(srv.URL, "t").Commit(context.Background(), CommitRequest{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorContains(t, err, "nope", "server message is carried through")
		})
	}
}
