// Package media acquires the optional audio signal from a post's video:
// download via yt-dlp, audio extraction via ffmpeg, transcription via an
// OpenAI-compatible speech-to-text endpoint. Every failure on this path
// is absorbed into an absent-value result; callers only ever see a
// VideoResult, never an error.
package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// VideoResult carries the optional signals recovered from the video.
// Both fields are nil when the corresponding signal could not be
// acquired.
type VideoResult struct {
	Transcript      *string
	DurationSeconds *float64
}

// Transcriber converts an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Tools locates the external media binaries.
type Tools struct {
	YtDlp   string
	FFmpeg  string
	FFprobe string
	Timeout time.Duration
}

// VideoProcessor downloads, demuxes and transcribes post videos.
type VideoProcessor struct {
	tools       Tools
	transcriber Transcriber
	log         *slog.Logger
}

// NewVideoProcessor wires the external tooling and transcription client.
func NewVideoProcessor(tools Tools, transcriber Transcriber, log *slog.Logger) *VideoProcessor {
	if tools.YtDlp == "" {
		tools.YtDlp = "yt-dlp"
	}
	if tools.FFmpeg == "" {
		tools.FFmpeg = "ffmpeg"
	}
	if tools.FFprobe == "" {
		tools.FFprobe = "ffprobe"
	}
	if tools.Timeout <= 0 {
		tools.Timeout = 120 * time.Second
	}
	return &VideoProcessor{tools: tools, transcriber: transcriber, log: log}
}

// Process runs the full video path for a URL. Temporary files live in a
// scoped directory removed on every exit path. Failures are logged and
// absorbed; a video with no audio track yields an absent transcript with
// the duration still reported.
func (p *VideoProcessor) Process(ctx context.Context, url string) VideoResult {
	ctx, cancel := context.WithTimeout(ctx, p.tools.Timeout)
	defer cancel()

	tempDir, err := os.MkdirTemp("", "recipe-video-*")
	if err != nil {
		p.log.Warn("video processing skipped", "err", err)
		return VideoResult{}
	}
	defer os.RemoveAll(tempDir)

	videoPath := filepath.Join(tempDir, "video.mp4")
	if err := p.download(ctx, url, videoPath); err != nil {
		p.log.Warn("video download failed", "url", url, "err", err)
		return VideoResult{}
	}

	result := VideoResult{}
	if duration, err := p.probeDuration(ctx, videoPath); err == nil {
		result.DurationSeconds = &duration
	} else {
		p.log.Warn("duration probe failed", "err", err)
	}

	hasAudio, err := p.probeAudio(ctx, videoPath)
	if err != nil {
		p.log.Warn("audio probe failed", "err", err)
		return result
	}
	if !hasAudio {
		p.log.Info("video has no audio track", "url", url)
		return result
	}

	audioPath := filepath.Join(tempDir, "audio.mp3")
	if err := p.extractAudio(ctx, videoPath, audioPath); err != nil {
		p.log.Warn("audio extraction failed", "err", err)
		return result
	}

	transcript, err := p.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		p.log.Warn("transcription failed", "err", err)
		return result
	}
	if transcript = strings.TrimSpace(transcript); transcript != "" {
		result.Transcript = &transcript
	}
	return result
}

func (p *VideoProcessor) download(ctx context.Context, url, dest string) error {
	cmd := exec.CommandContext(ctx, p.tools.YtDlp,
		"--format", "best[ext=mp4]",
		"--output", dest,
		"--quiet",
		"--retries", "5",
		"--fragment-retries", "5",
		url,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("yt-dlp: %w: %s", err, strings.TrimSpace(string(out)))
	}
	if _, err := os.Stat(dest); err != nil {
		return fmt.Errorf("download produced no file: %w", err)
	}
	return nil
}

func (p *VideoProcessor) probeDuration(ctx context.Context, path string) (float64, error) {
	out, err := exec.CommandContext(ctx, p.tools.FFprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}
	return strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
}

// probeAudio reports whether the container has at least one audio stream.
func (p *VideoProcessor) probeAudio(ctx context.Context, path string) (bool, error) {
	out, err := exec.CommandContext(ctx, p.tools.FFprobe,
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=codec_type",
		"-of", "csv=p=0",
		path,
	).Output()
	if err != nil {
		return false, fmt.Errorf("ffprobe streams: %w", err)
	}
	return strings.TrimSpace(string(out)) != "", nil
}

func (p *VideoProcessor) extractAudio(ctx context.Context, videoPath, audioPath string) error {
	cmd := exec.CommandContext(ctx, p.tools.FFmpeg,
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-y",
		audioPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
