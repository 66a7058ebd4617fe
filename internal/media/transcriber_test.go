package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not really mp3"), 0o644))
	return path
}

func TestWhisperClientSendsMultipartForm(t *testing.T) {
	var gotModel, gotFormat, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotModel = r.FormValue("model")
		gotFormat = r.FormValue("response_format")
		gotAuth = r.Header.Get("Authorization")

		_, _, err := r.FormFile("file")
		require.NoError(t, err)

		w.Write([]byte("boil the pasta for ten minutes"))
	}))
	defer server.Close()

	client := NewWhisperClient("sk-test", server.URL, "whisper-1", 5*time.Second)
	text, err := client.Transcribe(context.Background(), writeTempAudio(t))

	require.NoError(t, err)
	assert.Equal(t, "boil the pasta for ten minutes", text)
	assert.Equal(t, "whisper-1", gotModel)
	assert.Equal(t, "text", gotFormat)
	assert.Equal(t, "Bearer sk-test", gotAuth)
}

func TestWhisperClientSurfacesServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewWhisperClient("sk-test", server.URL, "", 5*time.Second)
	_, err := client.Transcribe(context.Background(), writeTempAudio(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestWhisperClientMissingFile(t *testing.T) {
	client := NewWhisperClient("sk-test", "", "", 5*time.Second)
	_, err := client.Transcribe(context.Background(), "/does/not/exist.mp3")
	require.Error(t, err)
}
