// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MartinJindu/SnapCast/internal/auth"
	"github.com/MartinJindu/SnapCast/internal/bunny"
	"github.com/MartinJindu/SnapCast/internal/cache"
	"github.com/MartinJindu/SnapCast/internal/capture"
	"github.com/MartinJindu/SnapCast/internal/config"
	"github.com/MartinJindu/SnapCast/internal/protect"
	"github.com/MartinJindu/SnapCast/internal/store"
	"github.com/MartinJindu/SnapCast/internal/upload"
	"github.com/MartinJindu/SnapCast/internal/videos"
)

const hostAccessKey = "host-secret"

type testEnv struct {
	host   *bunny.MockHost
	store  *store.Store
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	host := bunny.NewMockHost(hostAccessKey)
	t.Cleanup(host.Close)

	st, err := store.NewStore(filepath.Join(t.TempDir(), "videos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	stream := bunny.NewStreamClient(host.URL, "https://iframe.example/embed", "lib-1", hostAccessKey)
	storage := bunny.NewStorageClient(host.URL, "https://cdn.example", hostAccessKey)
	gate := protect.NewFixedWindow(time.Minute, 2)
	svc := videos.NewService(st, stream, storage, gate, cache.NewMemoryCache(0), time.Minute)

	cfg := config.Config{
		CommitWindow:     time.Minute,
		APIRequestLimit:  1000,
		APIRequestWindow: time.Minute,
	}
	resolver := auth.NewStaticResolver(map[string]string{
		"token-alice": "alice",
		"token-bob":   "bob",
	})

	srv := httptest.NewServer(NewServer(cfg, svc, resolver).Routes())
	t.Cleanup(srv.Close)

	return &testEnv{host: host, store: st, server: srv}
}

func (e *testEnv) submit(t *testing.T, token, title, visibility string) (*store.VideoRecord, error) {
	t.Helper()
	video := &capture.CapturedFile{
		Name:      "demo.webm",
		MIMEType:  "video/webm",
		SizeBytes: 5,
		Data:      []byte("vvvvv"),
	}
	thumbnail := &capture.CapturedFile{
		Name:      "demo.png",
		MIMEType:  "image/png",
		SizeBytes: 3,
		Data:      []byte("png"),
	}
	o := upload.New(upload.NewClient(e.server.URL, token))
	return o.Submit(context.Background(), video, thumbnail, upload.Metadata{
		Title:           title,
		Description:     "about " + title,
		Visibility:      visibility,
		DurationSeconds: 42,
	})
}

func (e *testEnv) get(t *testing.T, path, token string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, body
}

func TestFullSubmissionFlow(t *testing.T) {
	e := newTestEnv(t)

	rec, err := e.submit(t, "token-alice", "Sprint demo", store.VisibilityPublic)
	require.NoError(t, err)

	assert.Equal(t, "alice", rec.OwnerUserID)
	assert.Equal(t, "Sprint demo", rec.Title)
	assert.Equal(t, 42, rec.DurationSeconds)
	assert.Equal(t, "https://iframe.example/embed/lib-1/"+rec.ID, rec.VideoURL)
	assert.Contains(t, rec.ThumbnailURL, "https://cdn.example/thumbnails/")

	title, _, size, ok := e.host.Video(rec.ID)
	require.True(t, ok)
	assert.Equal(t, "Sprint demo", title, "commit synced the title onto the stream host")
	assert.Equal(t, 5, size, "video bytes were uploaded")
	assert.Equal(t, 1, e.host.ThumbnailCount())

	status, body := e.get(t, "/api/videos/"+rec.ID, "")
	require.Equal(t, http.StatusOK, status)
	var got store.VideoRecord
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, rec.ID, got.ID)
}

func TestSubmissionRequiresSession(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.submit(t, "bad-token", "Sprint demo", store.VisibilityPublic)
	require.ErrorIs(t, err, upload.ErrAuthentication)

	n, err := e.store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCommitRateLimitOverHTTP(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.submit(t, "token-alice", "one", store.VisibilityPublic)
	require.NoError(t, err)
	_, err = e.submit(t, "token-alice", "two", store.VisibilityPublic)
	require.NoError(t, err)

	_, err = e.submit(t, "token-alice", "three", store.VisibilityPublic)
	require.ErrorIs(t, err, upload.ErrRateLimited, "the third commit inside the window is denied")

	n, err := e.store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n, "the denied submission left no record")
}

func TestRateLimitResponseShape(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.submit(t, "token-alice", "one", store.VisibilityPublic)
	require.NoError(t, err)
	_, err = e.submit(t, "token-alice", "two", store.VisibilityPublic)
	require.NoError(t, err)

	payload, _ := json.Marshal(videos.CommitInput{
		VideoID:         "guid-x",
		ThumbnailURL:    "https://cdn.example/thumbnails/t",
		Title:           "t",
		Description:     "d",
		Visibility:      store.VisibilityPublic,
		DurationSeconds: 1,
	})
	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/api/videos", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer token-alice")
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()

	require.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Equal(t, "60", res.Header.Get("Retry-After"))

	var e2 struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&e2))
	assert.Equal(t, "error", e2.Status)
	assert.NotEmpty(t, e2.Message)
}

func TestListingVisibilityOverHTTP(t *testing.T) {
	e := newTestEnv(t)

	pub, err := e.submit(t, "token-alice", "Public demo", store.VisibilityPublic)
	require.NoError(t, err)
	priv, err := e.submit(t, "token-alice", "Private demo", store.VisibilityPrivate)
	require.NoError(t, err)

	status, body := e.get(t, "/api/videos", "")
	require.Equal(t, http.StatusOK, status)
	var listing videos.Listing
	require.NoError(t, json.Unmarshal(body, &listing))
	require.Len(t, listing.Videos, 1, "anonymous viewers see only public videos")
	assert.Equal(t, pub.ID, listing.Videos[0].ID)
	assert.Equal(t, 1, listing.Pagination.TotalVideos)

	status, body = e.get(t, "/api/videos", "token-alice")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &listing))
	assert.Len(t, listing.Videos, 2, "the owner also sees their private videos")

	status, _ = e.get(t, "/api/videos/"+priv.ID, "token-bob")
	assert.Equal(t, http.StatusNotFound, status, "private videos are hidden from other users")
}

func TestListingSearchAndPaging(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.submit(t, "token-alice", "Alpha walkthrough", store.VisibilityPublic)
	require.NoError(t, err)
	_, err = e.submit(t, "token-bob", "Beta walkthrough", store.VisibilityPublic)
	require.NoError(t, err)

	status, body := e.get(t, "/api/videos?query=beta", "")
	require.Equal(t, http.StatusOK, status)
	var listing videos.Listing
	require.NoError(t, json.Unmarshal(body, &listing))
	require.Len(t, listing.Videos, 1)
	assert.Equal(t, "Beta walkthrough", listing.Videos[0].Title)

	status, body = e.get(t, "/api/videos?pageSize=1&page=2&sort=oldest", "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &listing))
	require.Len(t, listing.Videos, 1)
	assert.Equal(t, store.Pagination{CurrentPage: 2, TotalPages: 2, TotalVideos: 2, PageSize: 1}, listing.Pagination)
}

func TestGetUnknownVideo(t *testing.T) {
	e := newTestEnv(t)

	status, body := e.get(t, "/api/videos/missing", "")

	assert.Equal(t, http.StatusNotFound, status)
	var e2 struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(body, &e2))
	assert.Equal(t, "error", e2.Status)
}

func TestHealthAndRequestID(t *testing.T) {
	e := newTestEnv(t)

	res, err := http.Get(e.server.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("X-Request-Id"))
}

func TestUpstreamFailureIsBadGateway(t *testing.T) {
	e := newTestEnv(t)
	e.host.FailNext("create", 503)

	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/api/uploads/video", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer token-alice")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()

	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
}
