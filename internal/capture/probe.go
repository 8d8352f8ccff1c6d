// SPDX-License-Identifier: MIT

package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// DurationProber extracts the media duration of a captured file in seconds.
type DurationProber interface {
	Duration(ctx context.Context, f *CapturedFile) (float64, error)
}

// FFProbeProber probes durations with ffprobe via ffmpeg-go. The captured
// bytes are staged in a temp file because ffprobe reads from a path.
type FFProbeProber struct{}

// Duration runs ffprobe over the file and returns format.duration.
func (FFProbeProber) Duration(_ context.Context, f *CapturedFile) (float64, error) {
	tmp, err := os.CreateTemp("", "snapcast-probe-*"+filepath.Ext(f.Name))
	if err != nil {
		return 0, fmt.Errorf("capture: stage probe file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(f.Data); err != nil {
		return 0, fmt.Errorf("capture: write probe file: %w", err)
	}

	out, err := ffmpeg.Probe(tmp.Name())
	if err != nil {
		return 0, fmt.Errorf("capture: ffprobe: %w", err)
	}

	var p struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		return 0, fmt.Errorf("capture: decode ffprobe output: %w", err)
	}

	seconds, err := strconv.ParseFloat(p.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("capture: parse duration %q: %w", p.Format.Duration, err)
	}
	return seconds, nil
}
