// SPDX-License-Identifier: MIT

package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MartinJindu/SnapCast/internal/store"
)

// VideoCredential authorizes one direct video byte upload.
type VideoCredential struct {
	VideoID   string `json:"videoId"`
	UploadURL string `json:"uploadUrl"`
	AccessKey string `json:"accessKey"`
}

// ThumbnailCredential authorizes one direct thumbnail upload and carries the
// CDN URL the committed record will reference.
type ThumbnailCredential struct {
	UploadURL string `json:"uploadUrl"`
	CDNURL    string `json:"cdnUrl"`
	AccessKey string `json:"accessKey"`
}

// CommitRequest is the metadata payload for the commit step.
type CommitRequest struct {
	VideoID         string `json:"videoId"`
	ThumbnailURL    string `json:"thumbnailUrl"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Visibility      string `json:"visibility"`
	DurationSeconds int    `json:"durationSeconds"`
}

// CredentialAPI is the server surface the orchestrator drives: credential
// issuance for both uploads, then the metadata commit.
type CredentialAPI interface {
	IssueVideoCredential(ctx context.Context) (*VideoCredential, error)
	IssueThumbnailCredential(ctx context.Context, videoID string) (*ThumbnailCredential, error)
	Commit(ctx context.Context, req CommitRequest) (*store.VideoRecord, error)
}

// Client is the HTTP implementation of CredentialAPI against a SnapCast
// server.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// NewClient creates a client for the server at base, authenticating with the
// given session token.
func NewClient(base, token string) *Client {
	return &Client{
		base:  strings.TrimRight(base, "/"),
		token: token,
		http:  &http.Client{Timeout: 30 * time.Second},
	}
}

// IssueVideoCredential requests upload credentials for a new video.
func (c *Client) IssueVideoCredential(ctx context.Context) (*VideoCredential, error) {
	var cred VideoCredential
	if err := c.post(ctx, "/api/uploads/video", nil, &cred); err != nil {
		return nil, err
	}
	if cred.UploadURL == "" || cred.AccessKey == "" {
		return nil, fmt.Errorf("%w: incomplete video upload credentials", ErrCommit)
	}
	return &cred, nil
}

// IssueThumbnailCredential requests upload credentials for the thumbnail of
// the given remote video.
func (c *Client) IssueThumbnailCredential(ctx context.Context, videoID string) (*ThumbnailCredential, error) {
	var cred ThumbnailCredential
	payload := map[string]string{"videoId": videoID}
	if err := c.post(ctx, "/api/uploads/thumbnail", payload, &cred); err != nil {
		return nil, err
	}
	if cred.UploadURL == "" || cred.CDNURL == "" || cred.AccessKey == "" {
		return nil, fmt.Errorf("%w: incomplete thumbnail upload credentials", ErrCommit)
	}
	return &cred, nil
}

// Commit asks the server to write the authoritative video record.
func (c *Client) Commit(ctx context.Context, req CommitRequest) (*store.VideoRecord, error) {
	var rec store.VideoRecord
	if err := c.post(ctx, "/api/videos", req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("upload: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, body)
	if err != nil {
		return fmt.Errorf("upload: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload: %s: %w", path, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return c.decodeError(path, res)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("upload: decode %s response: %w", path, err)
	}
	return nil
}

// decodeError maps the server's normalized error shape onto the local
// failure taxonomy.
func (c *Client) decodeError(path string, res *http.Response) error {
	var e struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	_ = json.NewDecoder(res.Body).Decode(&e)
	if e.Message == "" {
		e.Message = res.Status
	}

	switch res.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrAuthentication, e.Message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, e.Message)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrValidation, e.Message)
	default:
		return fmt.Errorf("%w: %s: %s", ErrCommit, path, e.Message)
	}
}
