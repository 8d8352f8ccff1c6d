// SPDX-License-Identifier: MIT

// Package upload drives the multi-step submission sequence: issue video
// credentials, push video bytes, issue thumbnail credentials, push thumbnail
// bytes, commit metadata. The sequence is modeled as an explicit state
// machine so the no-partial-record invariant is enforced by construction.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/MartinJindu/SnapCast/internal/bunny"
	"github.com/MartinJindu/SnapCast/internal/capture"
	"github.com/MartinJindu/SnapCast/internal/log"
	"github.com/MartinJindu/SnapCast/internal/metrics"
	"github.com/MartinJindu/SnapCast/internal/store"
	"github.com/rs/zerolog"
)

// Metadata is the user-entered form data accompanying a submission.
type Metadata struct {
	Title           string
	Description     string
	Visibility      string
	DurationSeconds int
}

// Orchestrator runs one submission sequence at a time. It does not retry:
// a failure surfaces to the caller with the submitting flag cleared, and a
// manual resubmission issues fresh credentials.
type Orchestrator struct {
	api    CredentialAPI
	http   *http.Client
	logger zerolog.Logger

	mu         sync.Mutex
	state      State
	submitting bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithHTTPClient overrides the client used for direct byte uploads.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Orchestrator) { o.http = c }
}

// New creates an orchestrator driving the given server API.
func New(api CredentialAPI, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		api:    api,
		http:   &http.Client{Timeout: 10 * time.Minute},
		logger: log.WithComponent("upload"),
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current submission state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Submitting reports whether a submission sequence is in flight.
func (o *Orchestrator) Submitting() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.submitting
}

// to moves the machine to next, enforcing the transition table.
func (o *Orchestrator) to(next State) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !canTransition(o.state, next) {
		return fmt.Errorf("upload: illegal transition %s -> %s", o.state, next)
	}
	o.logger.Debug().
		Str("old_state", o.state.String()).
		Str("new_state", next.String()).
		Msg("submission state change")
	o.state = next
	return nil
}

// Submit runs the full submission sequence and returns the committed record.
// Preconditions are checked before any network call; any step failure aborts
// the remainder and no video record is created.
func (o *Orchestrator) Submit(ctx context.Context, video, thumbnail *capture.CapturedFile, meta Metadata) (*store.VideoRecord, error) {
	o.mu.Lock()
	if o.submitting {
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: submission already in progress", ErrValidation)
	}
	o.submitting = true
	o.mu.Unlock()

	rec, err := o.run(ctx, video, thumbnail, meta)

	o.mu.Lock()
	o.submitting = false
	o.mu.Unlock()

	if err != nil {
		o.logger.Error().Err(err).Str(log.FieldState, o.State().String()).Msg("submission failed")
		metrics.UploadsFailed.WithLabelValues(failureKind(err)).Inc()
		return nil, err
	}
	metrics.UploadsCompleted.Inc()
	return rec, nil
}

func (o *Orchestrator) run(ctx context.Context, video, thumbnail *capture.CapturedFile, meta Metadata) (*store.VideoRecord, error) {
	if video == nil || thumbnail == nil {
		return nil, fmt.Errorf("%w: video and thumbnail are required", ErrValidation)
	}
	if meta.Title == "" || meta.Description == "" {
		return nil, fmt.Errorf("%w: title and description are required", ErrValidation)
	}
	if meta.Visibility == "" {
		meta.Visibility = store.VisibilityPublic
	}

	metrics.UploadsStarted.Inc()

	// Step 1: video upload credentials.
	if err := o.to(StateIssuingVideoCredential); err != nil {
		return nil, err
	}
	videoCred, err := o.api.IssueVideoCredential(ctx)
	if err != nil {
		return nil, o.fail(err)
	}

	// Step 2: push video bytes. The destination is keyed by the remote ID,
	// so a retry with the same credential replaces rather than duplicates.
	if err := o.to(StateUploadingVideo); err != nil {
		return nil, err
	}
	if err := o.push(ctx, videoCred.UploadURL, videoCred.AccessKey, video); err != nil {
		return nil, o.fail(err)
	}

	// Step 3: thumbnail credentials, scoped to the video's remote ID.
	if err := o.to(StateIssuingThumbnailCredential); err != nil {
		return nil, err
	}
	thumbCred, err := o.api.IssueThumbnailCredential(ctx, videoCred.VideoID)
	if err != nil {
		return nil, o.fail(err)
	}

	// Step 4: push thumbnail bytes.
	if err := o.to(StateUploadingThumbnail); err != nil {
		return nil, err
	}
	if err := o.push(ctx, thumbCred.UploadURL, thumbCred.AccessKey, thumbnail); err != nil {
		return nil, o.fail(err)
	}

	// Step 5: commit metadata.
	if err := o.to(StateCommitting); err != nil {
		return nil, err
	}
	rec, err := o.api.Commit(ctx, CommitRequest{
		VideoID:         videoCred.VideoID,
		ThumbnailURL:    thumbCred.CDNURL,
		Title:           meta.Title,
		Description:     meta.Description,
		Visibility:      meta.Visibility,
		DurationSeconds: meta.DurationSeconds,
	})
	if err != nil {
		return nil, o.fail(err)
	}

	if err := o.to(StateSucceeded); err != nil {
		return nil, err
	}
	o.logger.Info().
		Str(log.FieldVideoID, videoCred.VideoID).
		Msg("submission committed")
	return rec, nil
}

// push uploads the file bytes to a pre-signed endpoint. A non-2xx response
// is a terminal transport failure for this attempt.
func (o *Orchestrator) push(ctx context.Context, uploadURL, accessKey string, f *capture.CapturedFile) error {
	err := bunny.Upload(ctx, o.http, uploadURL, accessKey, f.MIMEType, bytes.NewReader(f.Data))
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUploadTransport, err)
}

// fail records the terminal state and passes the error through.
func (o *Orchestrator) fail(err error) error {
	_ = o.to(StateFailed)
	return err
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrAuthentication):
		return "authentication"
	case errors.Is(err, ErrRateLimited):
		return "rate_limit"
	case errors.Is(err, ErrUploadTransport):
		return "transport"
	default:
		return "commit"
	}
}
