// SPDX-License-Identifier: MIT

package bunny

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "stream-secret"

func newTestStream(t *testing.T) (*MockHost, *StreamClient) {
	t.Helper()
	host := NewMockHost(testKey)
	t.Cleanup(host.Close)
	client := NewStreamClient(host.URL, "https://iframe.example/embed", "lib-1", testKey)
	return host, client
}

func TestCreateVideoReturnsGUID(t *testing.T) {
	host, client := newTestStream(t)

	guid, err := client.CreateVideo(context.Background(), "Temporary Title")
	require.NoError(t, err)
	require.NotEmpty(t, guid)

	title, _, _, ok := host.Video(guid)
	require.True(t, ok)
	assert.Equal(t, "Temporary Title", title)
}

func TestCreateVideoUpstreamFailure(t *testing.T) {
	host, client := newTestStream(t)
	host.FailNext("create", 503)

	_, err := client.CreateVideo(context.Background(), "t")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamStatus)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 503, se.Status)
}

func TestUpdateVideoSyncsMetadata(t *testing.T) {
	host, client := newTestStream(t)
	guid, err := client.CreateVideo(context.Background(), "Temporary Title")
	require.NoError(t, err)

	require.NoError(t, client.UpdateVideo(context.Background(), guid, "Real Title", "A description"))

	title, description, _, ok := host.Video(guid)
	require.True(t, ok)
	assert.Equal(t, "Real Title", title)
	assert.Equal(t, "A description", description)
}

func TestUploadPushesBytes(t *testing.T) {
	host, client := newTestStream(t)
	ctx := context.Background()
	guid, err := client.CreateVideo(ctx, "t")
	require.NoError(t, err)

	payload := bytes.Repeat([]byte("v"), 2048)
	err = Upload(ctx, nil, client.UploadURL(guid), testKey, "video/mp4", bytes.NewReader(payload))
	require.NoError(t, err)

	_, _, size, ok := host.Video(guid)
	require.True(t, ok)
	assert.Equal(t, len(payload), size)
}

func TestUploadReplaceIsIdempotent(t *testing.T) {
	host, client := newTestStream(t)
	ctx := context.Background()
	guid, err := client.CreateVideo(ctx, "t")
	require.NoError(t, err)

	require.NoError(t, Upload(ctx, nil, client.UploadURL(guid), testKey, "video/mp4", bytes.NewReader([]byte("first"))))
	require.NoError(t, Upload(ctx, nil, client.UploadURL(guid), testKey, "video/mp4", bytes.NewReader([]byte("second-longer"))))

	_, _, size, ok := host.Video(guid)
	require.True(t, ok)
	assert.Equal(t, len("second-longer"), size, "retry with the same credential replaces the destination")
}

func TestUploadNonSuccessStatusIsTerminal(t *testing.T) {
	host, client := newTestStream(t)
	ctx := context.Background()
	guid, err := client.CreateVideo(ctx, "t")
	require.NoError(t, err)
	host.FailNext("upload", 500)

	err = Upload(ctx, nil, client.UploadURL(guid), testKey, "video/mp4", bytes.NewReader([]byte("v")))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamStatus))
}

func TestUploadRejectsWrongAccessKey(t *testing.T) {
	_, client := newTestStream(t)
	ctx := context.Background()
	guid, err := client.CreateVideo(ctx, "t")
	require.NoError(t, err)

	err = Upload(ctx, nil, client.UploadURL(guid), "wrong-key", "video/mp4", bytes.NewReader([]byte("v")))
	assert.ErrorIs(t, err, ErrUpstreamStatus)
}

func TestEmbedURL(t *testing.T) {
	_, client := newTestStream(t)
	assert.Equal(t, "https://iframe.example/embed/lib-1/guid-9", client.EmbedURL("guid-9"))
}

func TestThumbnailNaming(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	name := ThumbnailName("guid-9", issuedAt)
	assert.Equal(t, "1772353800000-guid-9-thumbnail", name)

	storage := NewStorageClient("https://storage.example/zone", "https://cdn.example", "k")
	assert.Equal(t, "https://storage.example/zone/thumbnails/"+name, storage.ThumbnailUploadURL(name))
	assert.Equal(t, "https://cdn.example/thumbnails/"+name, storage.ThumbnailCDNURL(name))
}

func TestStorageThumbnailUploadThroughMock(t *testing.T) {
	host := NewMockHost(testKey)
	t.Cleanup(host.Close)
	storage := NewStorageClient(host.URL, "https://cdn.example", testKey)

	name := ThumbnailName("guid-1", time.Now())
	err := Upload(context.Background(), nil, storage.ThumbnailUploadURL(name), testKey, "image/png", bytes.NewReader([]byte("png")))
	require.NoError(t, err)

	data, ok := host.Thumbnail(name)
	require.True(t, ok)
	assert.Equal(t, []byte("png"), data)
}
