// SPDX-License-Identifier: MIT

package capture

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProber returns a fixed duration (or error) after the gate channel is
// closed, so tests control when the async result lands.
type stubProber struct {
	seconds float64
	err     error
	gate    chan struct{}
}

func (p *stubProber) Duration(ctx context.Context, _ *CapturedFile) (float64, error) {
	if p.gate != nil {
		select {
		case <-p.gate:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return p.seconds, p.err
}

func videoCandidate(name string, size int) Candidate {
	return Candidate{Name: name, MIMEType: "video/mp4", Data: make([]byte, size)}
}

func TestAdapterRejectsOversizedCandidate(t *testing.T) {
	adapter := NewAdapter(100)

	ok := adapter.Select(videoCandidate("big.mp4", 101))

	require.False(t, ok)
	assert.Nil(t, adapter.File())
	assert.Nil(t, adapter.Preview())
	assert.Zero(t, adapter.Duration())
}

func TestAdapterRejectionLeavesStateUnchanged(t *testing.T) {
	adapter := NewAdapter(100)
	require.True(t, adapter.Select(videoCandidate("small.mp4", 50)))
	previous := adapter.Preview()

	require.False(t, adapter.Select(videoCandidate("big.mp4", 200)))

	assert.Equal(t, "small.mp4", adapter.File().Name)
	assert.Same(t, previous, adapter.Preview())
	_, live := adapter.previews.Open(previous.ID())
	assert.True(t, live, "preview handle of the kept file must stay live")
}

func TestAdapterAcceptCreatesPreviewHandle(t *testing.T) {
	adapter := NewAdapter(1024)

	require.True(t, adapter.Select(videoCandidate("clip.mp4", 512)))

	f := adapter.File()
	require.NotNil(t, f)
	assert.Equal(t, "clip.mp4", f.Name)
	assert.Equal(t, int64(512), f.SizeBytes)

	h := adapter.Preview()
	require.NotNil(t, h)
	data, ok := adapter.previews.Open(h.ID())
	require.True(t, ok)
	assert.Len(t, data, 512)
}

func TestAdapterSecondSelectReleasesFirstHandle(t *testing.T) {
	adapter := NewAdapter(1024)
	require.True(t, adapter.Select(videoCandidate("one.mp4", 10)))
	first := adapter.Preview()

	require.True(t, adapter.Select(videoCandidate("two.mp4", 20)))

	_, ok := adapter.previews.Open(first.ID())
	assert.False(t, ok, "first handle must be released before the second is minted")
	assert.Equal(t, 1, adapter.previews.Live(), "exactly one preview handle live at a time")
}

func TestAdapterResetReleasesHandle(t *testing.T) {
	adapter := NewAdapter(1024)
	require.True(t, adapter.Select(videoCandidate("clip.mp4", 10)))
	h := adapter.Preview()

	adapter.Reset()

	assert.Nil(t, adapter.File())
	assert.Nil(t, adapter.Preview())
	assert.Zero(t, adapter.Duration())
	_, ok := adapter.previews.Open(h.ID())
	assert.False(t, ok)
	assert.Zero(t, adapter.previews.Live())
}

func TestAdapterProbesDurationAsynchronously(t *testing.T) {
	prober := &stubProber{seconds: 42.4, gate: make(chan struct{})}
	adapter := NewAdapter(1024, WithProber(prober))

	require.True(t, adapter.Select(videoCandidate("clip.mp4", 10)))
	assert.Zero(t, adapter.Duration(), "duration defaults to 0 until the probe lands")

	close(prober.gate)
	require.Eventually(t, func() bool {
		return adapter.Duration() == 42
	}, time.Second, 10*time.Millisecond)
}

func TestAdapterNonFiniteDurationDefaultsToZero(t *testing.T) {
	for name, seconds := range map[string]float64{
		"negative": -3,
		"zero":     0,
		"infinite": math.Inf(1),
		"nan":      math.NaN(),
	} {
		t.Run(name, func(t *testing.T) {
			prober := &stubProber{seconds: seconds}
			adapter := NewAdapter(1024, WithProber(prober))

			require.True(t, adapter.Select(videoCandidate("clip.mp4", 10)))

			assert.Never(t, func() bool {
				return adapter.Duration() != 0
			}, 200*time.Millisecond, 20*time.Millisecond)
		})
	}
}

func TestAdapterDiscardsStaleProbeResult(t *testing.T) {
	slow := &stubProber{seconds: 99, gate: make(chan struct{})}
	adapter := NewAdapter(1024, WithProber(slow))
	require.True(t, adapter.Select(videoCandidate("first.mp4", 10)))

	// Move on to a non-video file, then let the stale probe finish.
	require.True(t, adapter.Select(Candidate{Name: "thumb.png", MIMEType: "image/png", Data: make([]byte, 5)}))
	close(slow.gate)

	assert.Never(t, func() bool {
		return adapter.Duration() != 0
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestAdapterNoProbeForImages(t *testing.T) {
	prober := &stubProber{seconds: 10}
	adapter := NewAdapter(1024, WithProber(prober))

	require.True(t, adapter.Select(Candidate{Name: "thumb.png", MIMEType: "image/png", Data: make([]byte, 5)}))

	assert.Never(t, func() bool {
		return adapter.Duration() != 0
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestAdapterSetDurationOverridesProbe(t *testing.T) {
	prober := &stubProber{seconds: 7, gate: make(chan struct{})}
	adapter := NewAdapter(1024, WithProber(prober))
	require.True(t, adapter.Select(videoCandidate("clip.webm", 10)))

	adapter.SetDuration(120)
	close(prober.gate)

	assert.Equal(t, 120, adapter.Duration())
	assert.Never(t, func() bool {
		return adapter.Duration() != 120
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestPreviewHandleReleaseIsIdempotent(t *testing.T) {
	reg := NewPreviewRegistry()
	h := reg.Create("a.mp4", []byte("data"))

	h.Release()
	h.Release()

	_, ok := reg.Open(h.ID())
	assert.False(t, ok)
	assert.Zero(t, reg.Live())
}
