// SPDX-License-Identifier: MIT

// Command snapcast-upload submits a video and thumbnail to a SnapCast
// server: it captures the files, probes the video duration, then runs the
// two-stage pre-signed upload sequence and commits the metadata.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/MartinJindu/SnapCast/internal/capture"
	"github.com/MartinJindu/SnapCast/internal/config"
	"github.com/MartinJindu/SnapCast/internal/log"
	"github.com/MartinJindu/SnapCast/internal/upload"
)

type options struct {
	server      string
	token       string
	videoPath   string
	thumbPath   string
	title       string
	description string
	visibility  string

	// A recording surface can hand a finished recording off through a URL
	// instead of a local file.
	recordingURL      string
	recordingName     string
	recordingDuration int
}

func main() {
	log.Configure(log.Config{Service: "snapcast-upload"})
	logger := log.WithComponent("main")

	var opts options
	flag.StringVar(&opts.server, "server", "http://localhost:8080", "SnapCast server base URL")
	flag.StringVar(&opts.token, "token", os.Getenv("SNAPCAST_TOKEN"), "session token")
	flag.StringVar(&opts.videoPath, "video", "", "path to the video file")
	flag.StringVar(&opts.thumbPath, "thumbnail", "", "path to the thumbnail image")
	flag.StringVar(&opts.title, "title", "", "video title")
	flag.StringVar(&opts.description, "description", "", "video description")
	flag.StringVar(&opts.visibility, "visibility", "public", "public or private")
	flag.StringVar(&opts.recordingURL, "recording-url", "", "URL of a recorded video to recover")
	flag.StringVar(&opts.recordingName, "recording-name", "recording.webm", "name for the recovered recording")
	flag.IntVar(&opts.recordingDuration, "recording-duration", 0, "known duration of the recording in seconds")
	flag.Parse()

	if err := run(opts); err != nil {
		logger.Fatal().Err(err).Msg("upload failed")
	}
}

func run(opts options) error {
	ctx := context.Background()
	logger := log.WithComponent("main")

	video := capture.NewAdapter(config.DefaultMaxVideoBytes, capture.WithProber(capture.FFProbeProber{}))
	thumbnail := capture.NewAdapter(config.DefaultMaxThumbnailBytes)

	if opts.recordingURL != "" {
		handoff := capture.NewHandoff()
		handoff.Offer(capture.Descriptor{
			Name:            opts.recordingName,
			URL:             opts.recordingURL,
			MIMEType:        mimeType(opts.recordingName),
			DurationSeconds: opts.recordingDuration,
		})
		if err := capture.NewBridge(handoff).Recover(ctx, video); err != nil {
			// Best-effort recovery: fall back to the -video flag.
			logger.Warn().Err(err).Msg("could not recover recording, falling back to local file")
		}
	}

	if video.File() == nil {
		if opts.videoPath == "" {
			return fmt.Errorf("a video is required (-video or -recording-url)")
		}
		if err := selectFile(video, opts.videoPath); err != nil {
			return err
		}
	}
	if opts.thumbPath == "" {
		return fmt.Errorf("a thumbnail is required (-thumbnail)")
	}
	if err := selectFile(thumbnail, opts.thumbPath); err != nil {
		return err
	}

	// The duration probe is asynchronous; give it a moment to land before
	// submitting. Zero is a legal outcome.
	duration := waitForDuration(video, 5*time.Second)

	orchestrator := upload.New(upload.NewClient(opts.server, opts.token))
	rec, err := orchestrator.Submit(ctx, video.File(), thumbnail.File(), upload.Metadata{
		Title:           opts.title,
		Description:     opts.description,
		Visibility:      opts.visibility,
		DurationSeconds: duration,
	})
	if err != nil {
		return err
	}

	video.Reset()
	thumbnail.Reset()

	out, _ := json.MarshalIndent(rec, "", "  ")
	fmt.Println(string(out))
	return nil
}

func selectFile(adapter *capture.Adapter, path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied path
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if !adapter.Select(capture.Candidate{
		Name:     filepath.Base(path),
		MIMEType: mimeType(path),
		Data:     data,
	}) {
		return fmt.Errorf("%s exceeds the size limit", path)
	}
	return nil
}

func waitForDuration(adapter *capture.Adapter, timeout time.Duration) int {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if d := adapter.Duration(); d > 0 {
			return d
		}
		time.Sleep(100 * time.Millisecond)
	}
	return adapter.Duration()
}

func mimeType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}
