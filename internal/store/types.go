// SPDX-License-Identifier: MIT

package store

import "time"

// Visibility values for a video record.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// VideoRecord is the authoritative metadata row for one uploaded video.
// It is created exactly once, after both the video and thumbnail bytes are
// durably stored on the external hosts.
type VideoRecord struct {
	ID              string    `json:"id"`
	OwnerUserID     string    `json:"ownerUserId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Visibility      string    `json:"visibility"`
	VideoURL        string    `json:"videoUrl"`
	ThumbnailURL    string    `json:"thumbnailUrl"`
	DurationSeconds int       `json:"durationSeconds"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Sort options for listings. Unknown values fall back to SortNewest.
const (
	SortNewest              = "newest"
	SortOldest              = "oldest"
	SortAlphabetical        = "alphabetical"
	SortReverseAlphabetical = "reverse-alphabetical"
)

// ListQuery describes a listing request.
type ListQuery struct {
	// ViewerID widens visibility to the viewer's own private videos.
	// Empty means anonymous: public videos only.
	ViewerID string
	// Query is an optional case-insensitive title substring match.
	Query string
	// Sort is one of the named sort options.
	Sort string
	// Page is 1-based; PageSize bounds the result set.
	Page     int
	PageSize int
}

// Pagination describes the position of a listing page within the full set.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalVideos int `json:"totalVideos"`
	PageSize    int `json:"pageSize"`
}
