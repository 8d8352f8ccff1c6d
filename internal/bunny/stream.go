// SPDX-License-Identifier: MIT

// Package bunny talks to the external stream and object hosts. The stream
// host owns video placeholders, byte ingestion and playback embeds; the
// object host stores thumbnails behind a CDN.
package bunny

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AccessKeyHeader authorizes direct uploads and API calls against both hosts.
const AccessKeyHeader = "AccessKey"

// StreamClient talks to the stream host's management API for one library.
type StreamClient struct {
	base      string
	embedBase string
	libraryID string
	accessKey string
	http      *http.Client
}

// NewStreamClient creates a client for the given library.
func NewStreamClient(baseURL, embedBaseURL, libraryID, accessKey string) *StreamClient {
	return &StreamClient{
		base:      strings.TrimRight(baseURL, "/"),
		embedBase: strings.TrimRight(embedBaseURL, "/"),
		libraryID: libraryID,
		accessKey: accessKey,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateVideo creates a placeholder video on the stream host and returns its
// remote ID (guid). The placeholder carries a temporary title until the
// metadata commit syncs the real one.
func (c *StreamClient) CreateVideo(ctx context.Context, title string) (string, error) {
	payload, _ := json.Marshal(map[string]string{
		"title":        title,
		"collectionId": "",
	})

	u := fmt.Sprintf("%s/%s/videos", c.base, c.libraryID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("bunny: create video request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(AccessKeyHeader, c.accessKey)

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("bunny: create video: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", &StatusError{Operation: "create video", Status: res.StatusCode}
	}

	var p struct {
		GUID string `json:"guid"`
	}
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		return "", fmt.Errorf("bunny: decode create video response: %w", err)
	}
	if p.GUID == "" {
		return "", fmt.Errorf("bunny: create video response missing guid")
	}
	return p.GUID, nil
}

// UpdateVideo syncs title and description onto the remote video.
func (c *StreamClient) UpdateVideo(ctx context.Context, videoID, title, description string) error {
	payload, _ := json.Marshal(map[string]string{
		"title":       title,
		"description": description,
	})

	u := fmt.Sprintf("%s/%s/videos/%s", c.base, c.libraryID, videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("bunny: update video request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(AccessKeyHeader, c.accessKey)

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("bunny: update video: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &StatusError{Operation: "update video", Status: res.StatusCode}
	}
	return nil
}

// UploadURL returns the endpoint a client PUTs raw video bytes to. The
// destination is keyed by the remote ID, so a retry with the same credential
// replaces rather than duplicates.
func (c *StreamClient) UploadURL(videoID string) string {
	return fmt.Sprintf("%s/%s/videos/%s", c.base, c.libraryID, videoID)
}

// EmbedURL returns the playable URL for a committed video.
func (c *StreamClient) EmbedURL(videoID string) string {
	return fmt.Sprintf("%s/%s/%s", c.embedBase, c.libraryID, videoID)
}

// AccessKey exposes the library's upload secret for credential issuance.
func (c *StreamClient) AccessKey() string {
	return c.accessKey
}

// Upload PUTs raw bytes to a pre-signed upload endpoint using the issued
// access key. A non-2xx response is a terminal failure for this attempt.
func Upload(ctx context.Context, client *http.Client, uploadURL, accessKey, contentType string, body io.Reader) error {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return fmt.Errorf("bunny: upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(AccessKeyHeader, accessKey)

	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("bunny: upload: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &StatusError{Operation: "upload", Status: res.StatusCode}
	}
	return nil
}
