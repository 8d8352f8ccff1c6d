// SPDX-License-Identifier: MIT

package bunny

import (
	"fmt"
	"strings"
	"time"
)

// thumbnailPrefix is the fixed path segment thumbnails live under on the
// object host and its CDN.
const thumbnailPrefix = "thumbnails"

// StorageClient derives upload and CDN locations on the object host.
// Thumbnail uploads go directly from the client to the host, so the only
// server-side work is minting the deterministic object path.
type StorageClient struct {
	base      string
	cdnBase   string
	accessKey string
}

// NewStorageClient creates a client for the object host.
func NewStorageClient(baseURL, cdnBaseURL, accessKey string) *StorageClient {
	return &StorageClient{
		base:      strings.TrimRight(baseURL, "/"),
		cdnBase:   strings.TrimRight(cdnBaseURL, "/"),
		accessKey: accessKey,
	}
}

// ThumbnailName derives the object name for a video's thumbnail. Issue time
// plus remote ID keeps names collision-free across upload attempts.
func ThumbnailName(videoID string, issuedAt time.Time) string {
	return fmt.Sprintf("%d-%s-thumbnail", issuedAt.UnixMilli(), videoID)
}

// ThumbnailUploadURL returns the pre-signed upload endpoint for name.
func (c *StorageClient) ThumbnailUploadURL(name string) string {
	return fmt.Sprintf("%s/%s/%s", c.base, thumbnailPrefix, name)
}

// ThumbnailCDNURL returns the public CDN URL for name.
func (c *StorageClient) ThumbnailCDNURL(name string) string {
	return fmt.Sprintf("%s/%s/%s", c.cdnBase, thumbnailPrefix, name)
}

// AccessKey exposes the storage upload secret for credential issuance.
func (c *StorageClient) AccessKey() string {
	return c.accessKey
}
