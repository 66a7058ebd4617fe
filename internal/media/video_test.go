package media

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTranscriber captures whether the transcription leg ran.
type recordingTranscriber struct {
	text   string
	err    error
	called bool
}

func (r *recordingTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	r.called = true
	if _, err := os.Stat(audioPath); err != nil {
		return "", err
	}
	return r.text, r.err
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

// stubYtDlp creates the requested output file and records its path so
// tests can check the scoped temp dir afterwards.
func stubYtDlp(t *testing.T, dir, captureFile string) string {
	return writeScript(t, dir, "yt-dlp", `
dest=""
while [ $# -gt 0 ]; do
  if [ "$1" = "--output" ]; then dest="$2"; fi
  shift
done
echo "$dest" > "`+captureFile+`"
: > "$dest"
`)
}

// stubFFprobe answers the duration query and reports the given stream
// list for the audio query.
func stubFFprobe(t *testing.T, dir, streams string) string {
	return writeScript(t, dir, "ffprobe", `
case "$*" in
  *format=duration*) echo "12.5" ;;
  *select_streams*) echo "`+streams+`" ;;
esac
`)
}

// stubFFmpeg creates its last argument, the audio output path.
func stubFFmpeg(t *testing.T, dir string) string {
	return writeScript(t, dir, "ffmpeg", `
for last; do :; done
: > "$last"
`)
}

func TestProcessNoAudioTrackIsAbsentTranscriptNotError(t *testing.T) {
	dir := t.TempDir()
	capture := filepath.Join(dir, "dest.txt")
	tr := &recordingTranscriber{}

	p := NewVideoProcessor(Tools{
		YtDlp:   stubYtDlp(t, dir, capture),
		FFmpeg:  stubFFmpeg(t, dir),
		FFprobe: stubFFprobe(t, dir, ""),
		Timeout: 10 * time.Second,
	}, tr, slog.Default())

	result := p.Process(context.Background(), "https://instagram.example/p/silent")

	assert.Nil(t, result.Transcript)
	require.NotNil(t, result.DurationSeconds)
	assert.Equal(t, 12.5, *result.DurationSeconds)
	assert.False(t, tr.called, "transcription must be skipped without an audio track")

	// The scoped temp dir is removed on exit.
	dest, err := os.ReadFile(capture)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Dir(strings.TrimSpace(string(dest))))
	assert.True(t, os.IsNotExist(err))
}

func TestProcessDownloadFailureIsAbsorbed(t *testing.T) {
	dir := t.TempDir()
	tr := &recordingTranscriber{}

	p := NewVideoProcessor(Tools{
		YtDlp:   writeScript(t, dir, "yt-dlp", "echo 'ERROR: unable to download' >&2\nexit 1\n"),
		FFmpeg:  stubFFmpeg(t, dir),
		FFprobe: stubFFprobe(t, dir, "audio"),
		Timeout: 10 * time.Second,
	}, tr, slog.Default())

	result := p.Process(context.Background(), "https://instagram.example/p/gone")

	assert.Nil(t, result.Transcript)
	assert.Nil(t, result.DurationSeconds)
	assert.False(t, tr.called)
}

func TestProcessTranscribesWhenAudioPresent(t *testing.T) {
	dir := t.TempDir()
	capture := filepath.Join(dir, "dest.txt")
	tr := &recordingTranscriber{text: "  boil the pasta  "}

	p := NewVideoProcessor(Tools{
		YtDlp:   stubYtDlp(t, dir, capture),
		FFmpeg:  stubFFmpeg(t, dir),
		FFprobe: stubFFprobe(t, dir, "audio"),
		Timeout: 10 * time.Second,
	}, tr, slog.Default())

	result := p.Process(context.Background(), "https://instagram.example/p/abc")

	assert.True(t, tr.called)
	require.NotNil(t, result.Transcript)
	assert.Equal(t, "boil the pasta", *result.Transcript)
	require.NotNil(t, result.DurationSeconds)
	assert.Equal(t, 12.5, *result.DurationSeconds)
}
