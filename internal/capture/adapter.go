// SPDX-License-Identifier: MIT

// Package capture owns client-side file selection: size validation, preview
// handle lifecycle, asynchronous duration probing and the recording hand-off
// bridge.
package capture

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/MartinJindu/SnapCast/internal/log"
	"github.com/rs/zerolog"
)

// CapturedFile is a selected file held by the adapter.
type CapturedFile struct {
	Name      string
	MIMEType  string
	SizeBytes int64
	Data      []byte
}

// Candidate describes a file offered to the adapter for selection.
type Candidate struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Adapter validates candidate files and owns the preview handle lifecycle.
// At most one preview handle is live per adapter at any time.
type Adapter struct {
	maxSize  int64
	prober   DurationProber
	previews *PreviewRegistry
	logger   zerolog.Logger

	mu       sync.Mutex
	file     *CapturedFile
	preview  *PreviewHandle
	duration int
	probeSeq uint64
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithProber overrides the duration prober (tests use stubs).
func WithProber(p DurationProber) AdapterOption {
	return func(a *Adapter) { a.prober = p }
}

// WithPreviewRegistry shares a registry between adapters.
func WithPreviewRegistry(r *PreviewRegistry) AdapterOption {
	return func(a *Adapter) { a.previews = r }
}

// NewAdapter creates an adapter that rejects files larger than maxSize bytes.
func NewAdapter(maxSize int64, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		maxSize: maxSize,
		logger:  log.WithComponent("capture"),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.previews == nil {
		a.previews = NewPreviewRegistry()
	}
	return a
}

// Select accepts or rejects a candidate file. Oversized candidates are
// rejected silently with no state change. On acceptance the previous preview
// handle is released before the new one is minted, and for video mime types
// a duration probe runs out-of-band; its result lands after Select returns.
func (a *Adapter) Select(c Candidate) bool {
	size := int64(len(c.Data))
	if size > a.maxSize {
		a.logger.Debug().
			Str("name", c.Name).
			Int64(log.FieldSizeBytes, size).
			Int64("max_bytes", a.maxSize).
			Msg("candidate exceeds size limit, rejected")
		return false
	}

	a.mu.Lock()
	if a.preview != nil {
		a.preview.Release()
	}
	a.file = &CapturedFile{
		Name:      c.Name,
		MIMEType:  c.MIMEType,
		SizeBytes: size,
		Data:      c.Data,
	}
	a.preview = a.previews.Create(c.Name, c.Data)
	a.duration = 0
	a.probeSeq++
	seq := a.probeSeq
	file := a.file
	a.mu.Unlock()

	if strings.HasPrefix(c.MIMEType, "video") && a.prober != nil {
		go a.probeDuration(seq, file)
	}
	return true
}

// probeDuration loads the file's media duration out-of-band. A stale result
// (the adapter moved on to another file) is discarded by the sequence check.
func (a *Adapter) probeDuration(seq uint64, f *CapturedFile) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seconds, err := a.prober.Duration(ctx, f)
	rounded := 0
	if err != nil {
		a.logger.Warn().Err(err).Str("name", f.Name).Msg("duration probe failed")
	} else if !math.IsInf(seconds, 0) && !math.IsNaN(seconds) && seconds > 0 {
		rounded = int(math.Round(seconds))
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.probeSeq != seq {
		return
	}
	a.duration = rounded
}

// SetDuration applies a known duration, bypassing the probe. Used by the
// recording bridge when the recording surface already measured it.
func (a *Adapter) SetDuration(seconds int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil || seconds <= 0 {
		return
	}
	a.probeSeq++ // discard any in-flight probe result
	a.duration = seconds
}

// File returns the currently selected file, or nil.
func (a *Adapter) File() *CapturedFile {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.file
}

// Preview returns the live preview handle, or nil. The handle is invalid
// after Reset or after a subsequent Select.
func (a *Adapter) Preview() *PreviewHandle {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.preview
}

// Duration returns the probed (or carried-over) duration in seconds. Zero
// until the probe completes, and zero when the probe yields a non-finite or
// non-positive value.
func (a *Adapter) Duration() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.duration
}

// Reset releases the preview handle and returns the adapter to its empty
// state.
func (a *Adapter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.preview != nil {
		a.preview.Release()
	}
	a.file = nil
	a.preview = nil
	a.duration = 0
	a.probeSeq++
}
