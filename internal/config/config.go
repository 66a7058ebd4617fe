// Package config loads application configuration from a YAML file with
// environment overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30s" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the process-wide configuration, established once at startup.
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	OpenAI   OpenAIConfig  `yaml:"openai"`
	Browser  BrowserConfig `yaml:"browser"`
	Media    MediaConfig   `yaml:"media"`
	Render   RenderConfig  `yaml:"render"`
	LogLevel string        `yaml:"log_level"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port        int `yaml:"port"`
	MetricsPort int `yaml:"metrics_port"`
}

// OpenAIConfig holds credentials and model names for the completion and
// transcription services.
type OpenAIConfig struct {
	APIKey             string   `yaml:"api_key"`
	BaseURL            string   `yaml:"base_url"`
	ChatModel          string   `yaml:"chat_model"`
	TranscriptionModel string   `yaml:"transcription_model"`
	Timeout            Duration `yaml:"timeout"`
}

// BrowserConfig controls the headless browser session.
type BrowserConfig struct {
	NavigationTimeout Duration `yaml:"navigation_timeout"`
	SettleDelay       Duration `yaml:"settle_delay"`
	UserAgent         string   `yaml:"user_agent"`
}

// MediaConfig points at the external video tooling.
type MediaConfig struct {
	YtDlpPath       string   `yaml:"ytdlp_path"`
	FFmpegPath      string   `yaml:"ffmpeg_path"`
	FFprobePath     string   `yaml:"ffprobe_path"`
	DownloadTimeout Duration `yaml:"download_timeout"`
}

// RenderConfig controls artifact output.
type RenderConfig struct {
	OutputDir string   `yaml:"output_dir"`
	FontPaths []string `yaml:"font_paths"`
}

// Load reads the YAML file at path, applies defaults, and overlays
// environment variables. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		cfg.OpenAI.BaseURL = base
	}

	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("openai api key not configured (set OPENAI_API_KEY)")
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			MetricsPort: 9090,
		},
		OpenAI: OpenAIConfig{
			ChatModel:          "gpt-4o",
			TranscriptionModel: "whisper-1",
			Timeout:            Duration(90 * time.Second),
		},
		Browser: BrowserConfig{
			NavigationTimeout: Duration(30 * time.Second),
			SettleDelay:       Duration(5 * time.Second),
			UserAgent:         "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		},
		Media: MediaConfig{
			YtDlpPath:       "yt-dlp",
			FFmpegPath:      "ffmpeg",
			FFprobePath:     "ffprobe",
			DownloadTimeout: Duration(120 * time.Second),
		},
		Render: RenderConfig{
			OutputDir: "output",
			FontPaths: []string{
				"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
				"/usr/share/fonts/dejavu/DejaVuSans-Bold.ttf",
				"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			},
		},
		LogLevel: "info",
	}
}
