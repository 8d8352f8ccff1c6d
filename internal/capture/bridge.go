// SPDX-License-Identifier: MIT

package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MartinJindu/SnapCast/internal/log"
	"github.com/rs/zerolog"
)

// Bridge recovers an in-progress recording handed off from a separate
// recording surface and injects it into a capture adapter as if the user had
// selected it. The transfer is best-effort: a failure leaves the adapter in
// its prior state and the user picks a file manually.
type Bridge struct {
	handoff *Handoff
	client  *http.Client
	logger  zerolog.Logger
}

// NewBridge creates a bridge consuming from the given hand-off channel.
func NewBridge(handoff *Handoff) *Bridge {
	return &Bridge{
		handoff: handoff,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  log.WithComponent("bridge"),
	}
}

// Recover consumes the pending recording descriptor, if any, and injects the
// recording into adapter. A missing descriptor is a no-op. The descriptor is
// consumed at most once; its blob resource is released on every path. The
// returned error is informational — callers log it and fall back to manual
// selection.
func (b *Bridge) Recover(ctx context.Context, adapter *Adapter) error {
	d, ok := b.handoff.take()
	if !ok {
		return nil
	}
	defer func() {
		if d.Release != nil {
			d.Release()
		}
	}()

	data, err := b.fetch(ctx, d.URL)
	if err != nil {
		b.logger.Warn().Err(err).Str("name", d.Name).Msg("failed to load recorded video")
		return err
	}

	if !adapter.Select(Candidate{Name: d.Name, MIMEType: d.MIMEType, Data: data}) {
		err := fmt.Errorf("capture: recorded video rejected by adapter")
		b.logger.Warn().Str("name", d.Name).Msg("recorded video rejected by adapter")
		return err
	}

	if d.DurationSeconds > 0 {
		adapter.SetDuration(d.DurationSeconds)
	}

	b.logger.Info().
		Str("name", d.Name).
		Int(log.FieldDuration, d.DurationSeconds).
		Msg("recovered recording into upload surface")
	return nil
}

func (b *Bridge) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("capture: fetch recording request: %w", err)
	}
	res, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("capture: fetch recording: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("capture: fetch recording: HTTP %d", res.StatusCode)
	}
	return io.ReadAll(res.Body)
}
