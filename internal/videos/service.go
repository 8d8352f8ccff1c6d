// SPDX-License-Identifier: MIT

// Package videos implements the server-side video actions: upload credential
// issuance, the metadata commit, and cached listings.
package videos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MartinJindu/SnapCast/internal/auth"
	"github.com/MartinJindu/SnapCast/internal/bunny"
	"github.com/MartinJindu/SnapCast/internal/cache"
	"github.com/MartinJindu/SnapCast/internal/log"
	"github.com/MartinJindu/SnapCast/internal/metrics"
	"github.com/MartinJindu/SnapCast/internal/protect"
	"github.com/MartinJindu/SnapCast/internal/store"
	"github.com/rs/zerolog"
)

// placeholderTitle is the temporary title a video placeholder carries until
// the commit syncs the real one.
const placeholderTitle = "Temporary Title"

// VideoCredential authorizes one direct video upload.
type VideoCredential struct {
	VideoID   string `json:"videoId"`
	UploadURL string `json:"uploadUrl"`
	AccessKey string `json:"accessKey"`
}

// ThumbnailCredential authorizes one direct thumbnail upload.
type ThumbnailCredential struct {
	UploadURL string `json:"uploadUrl"`
	CDNURL    string `json:"cdnUrl"`
	AccessKey string `json:"accessKey"`
}

// CommitInput is the metadata payload for a commit.
type CommitInput struct {
	VideoID         string `json:"videoId"`
	ThumbnailURL    string `json:"thumbnailUrl"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Visibility      string `json:"visibility"`
	DurationSeconds int    `json:"durationSeconds"`
}

// Listing is one page of visible videos with its pagination envelope.
type Listing struct {
	Videos     []store.VideoRecord `json:"videos"`
	Pagination store.Pagination    `json:"pagination"`
}

// Service wires the durable store, the stream host, the protection gate and
// the listing cache into the server-side video actions.
type Service struct {
	store    *store.Store
	stream   *bunny.StreamClient
	storage  *bunny.StorageClient
	gate     protect.Protector
	cache    cache.Cache
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates the video service.
func NewService(st *store.Store, stream *bunny.StreamClient, storage *bunny.StorageClient, gate protect.Protector, c cache.Cache, cacheTTL time.Duration) *Service {
	return &Service{
		store:    st,
		stream:   stream,
		storage:  storage,
		gate:     gate,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   log.WithComponent("videos"),
		now:      time.Now,
	}
}

// IssueVideoCredential creates a placeholder on the stream host and returns
// the single-use upload credential for it. Requires an authenticated caller.
func (s *Service) IssueVideoCredential(ctx context.Context, p *auth.Principal) (*VideoCredential, error) {
	if p == nil {
		return nil, auth.ErrUnauthenticated
	}

	guid, err := s.stream.CreateVideo(ctx, placeholderTitle)
	if err != nil {
		return nil, fmt.Errorf("issue video credential: %w", err)
	}

	return &VideoCredential{
		VideoID:   guid,
		UploadURL: s.stream.UploadURL(guid),
		AccessKey: s.stream.AccessKey(),
	}, nil
}

// IssueThumbnailCredential derives the deterministic thumbnail object path
// for a video and returns the upload credential plus the CDN URL the record
// will reference.
func (s *Service) IssueThumbnailCredential(ctx context.Context, p *auth.Principal, videoID string) (*ThumbnailCredential, error) {
	if p == nil {
		return nil, auth.ErrUnauthenticated
	}
	if videoID == "" {
		return nil, fmt.Errorf("%w: videoId is required", ErrInvalidInput)
	}

	name := bunny.ThumbnailName(videoID, s.now())
	return &ThumbnailCredential{
		UploadURL: s.storage.ThumbnailUploadURL(name),
		CDNURL:    s.storage.ThumbnailCDNURL(name),
		AccessKey: s.storage.AccessKey(),
	}, nil
}

// Commit writes the authoritative video record. Steps: resolve identity,
// per-user rate limit, metadata sync to the stream host, insert, listing
// cache invalidation. A rate-limit denial performs no write. The insert and
// the invalidation are not atomic; a stale cache self-heals at TTL expiry.
func (s *Service) Commit(ctx context.Context, p *auth.Principal, in CommitInput) (*store.VideoRecord, error) {
	if p == nil {
		metrics.CommitsTotal.WithLabelValues("unauthenticated").Inc()
		return nil, auth.ErrUnauthenticated
	}
	if err := validateCommit(in); err != nil {
		metrics.CommitsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if decision := s.gate.Protect(ctx, p.ID); decision.IsDenied() {
		metrics.CommitsTotal.WithLabelValues("rate_limited").Inc()
		s.logger.Warn().
			Str(log.FieldUserID, p.ID).
			Str(log.FieldVideoID, in.VideoID).
			Msg("commit denied by rate limit")
		return nil, ErrRateLimited
	}

	// Metadata sync failure aborts the whole commit even though the bytes
	// are already durable on the hosts. See DESIGN.md on this decision.
	if err := s.stream.UpdateVideo(ctx, in.VideoID, in.Title, in.Description); err != nil {
		metrics.CommitsTotal.WithLabelValues("sync_failed").Inc()
		return nil, fmt.Errorf("%w: metadata sync: %v", ErrCommitFailed, err)
	}

	now := s.now().UTC()
	rec := store.VideoRecord{
		ID:              in.VideoID,
		OwnerUserID:     p.ID,
		Title:           in.Title,
		Description:     in.Description,
		Visibility:      in.Visibility,
		VideoURL:        s.stream.EmbedURL(in.VideoID),
		ThumbnailURL:    in.ThumbnailURL,
		DurationSeconds: in.DurationSeconds,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		metrics.CommitsTotal.WithLabelValues("insert_failed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	s.cache.Clear(ctx)
	metrics.CommitsTotal.WithLabelValues("ok").Inc()
	s.logger.Info().
		Str(log.FieldUserID, p.ID).
		Str(log.FieldVideoID, rec.ID).
		Int(log.FieldDuration, rec.DurationSeconds).
		Msg("video record committed")
	return &rec, nil
}

func validateCommit(in CommitInput) error {
	if in.VideoID == "" {
		return fmt.Errorf("%w: videoId is required", ErrInvalidInput)
	}
	if in.ThumbnailURL == "" {
		return fmt.Errorf("%w: thumbnailUrl is required", ErrInvalidInput)
	}
	if in.Title == "" || in.Description == "" {
		return fmt.Errorf("%w: title and description are required", ErrInvalidInput)
	}
	if in.Visibility != store.VisibilityPublic && in.Visibility != store.VisibilityPrivate {
		return fmt.Errorf("%w: visibility must be public or private", ErrInvalidInput)
	}
	if in.DurationSeconds < 0 {
		return fmt.Errorf("%w: duration must not be negative", ErrInvalidInput)
	}
	return nil
}

// List returns one page of videos visible to the viewer, serving repeat
// requests from the listing cache.
func (s *Service) List(ctx context.Context, q store.ListQuery) (*Listing, error) {
	key := listKey(q)
	if data, ok := s.cache.Get(ctx, key); ok {
		var cached Listing
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
		s.logger.Warn().Str("key", key).Msg("discarding undecodable cached listing")
	}

	records, pagination, err := s.store.List(ctx, q)
	if err != nil {
		return nil, err
	}

	listing := &Listing{Videos: records, Pagination: pagination}
	if data, err := json.Marshal(listing); err == nil {
		s.cache.Set(ctx, key, data, s.cacheTTL)
	}
	return listing, nil
}

// Get returns a single record. Private videos resolve only for their owner.
func (s *Service) Get(ctx context.Context, viewerID, id string) (*store.VideoRecord, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Visibility == store.VisibilityPrivate && rec.OwnerUserID != viewerID {
		return nil, store.ErrNotFound
	}
	return rec, nil
}

func listKey(q store.ListQuery) string {
	return fmt.Sprintf("list:%s:%s:%s:%d:%d", q.ViewerID, q.Query, q.Sort, q.Page, q.PageSize)
}
