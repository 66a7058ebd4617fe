package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultTranscriptionEndpoint = "https://api.openai.com/v1/audio/transcriptions"

// WhisperClient implements Transcriber against an OpenAI-compatible
// audio transcription endpoint.
type WhisperClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ Transcriber = (*WhisperClient)(nil)

// NewWhisperClient builds a transcription client. baseURL may be empty to
// use the OpenAI endpoint; model defaults to whisper-1.
func NewWhisperClient(apiKey, baseURL, model string, timeout time.Duration) *WhisperClient {
	endpoint := defaultTranscriptionEndpoint
	if baseURL != "" {
		endpoint = strings.TrimSuffix(baseURL, "/") + "/audio/transcriptions"
	}
	if model == "" {
		model = "whisper-1"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &WhisperClient{
		endpoint:   endpoint,
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Transcribe uploads the audio file and returns the plain-text
// transcription.
func (c *WhisperClient) Transcribe(ctx context.Context, audioPath string) (string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("model", c.model); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	if err := writer.WriteField("response_format", "text"); err != nil {
		return "", fmt.Errorf("write format field: %w", err)
	}
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy audio: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read transcription: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("transcription error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	return string(payload), nil
}
