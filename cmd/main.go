package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/SquizAI/recipies01/internal/api"
	"github.com/SquizAI/recipies01/internal/browser"
	"github.com/SquizAI/recipies01/internal/config"
	"github.com/SquizAI/recipies01/internal/extract"
	"github.com/SquizAI/recipies01/internal/logging"
	"github.com/SquizAI/recipies01/internal/media"
	"github.com/SquizAI/recipies01/internal/pipeline"
	"github.com/SquizAI/recipies01/internal/render"
	"github.com/SquizAI/recipies01/internal/synth"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Server.MetricsPort = *metricsPort
	}

	logger := logging.New(cfg.LogLevel)

	llmOpts := []openai.Option{
		openai.WithToken(cfg.OpenAI.APIKey),
		openai.WithModel(cfg.OpenAI.ChatModel),
	}
	if cfg.OpenAI.BaseURL != "" {
		llmOpts = append(llmOpts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	model, err := openai.New(llmOpts...)
	if err != nil {
		log.Fatalf("Failed to initialize completion client: %v", err)
	}

	session, err := browser.NewSession(ctx, browser.Options{
		NavigationTimeout: cfg.Browser.NavigationTimeout.Std(),
		SettleDelay:       cfg.Browser.SettleDelay.Std(),
		UserAgent:         cfg.Browser.UserAgent,
	})
	if err != nil {
		log.Fatalf("Failed to start browser session: %v", err)
	}
	defer session.Close()

	transcriber := media.NewWhisperClient(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.BaseURL,
		cfg.OpenAI.TranscriptionModel,
		cfg.OpenAI.Timeout.Std(),
	)

	runner := pipeline.New(pipeline.Deps{
		Page: extract.New(session, logger),
		Video: media.NewVideoProcessor(media.Tools{
			YtDlp:   cfg.Media.YtDlpPath,
			FFmpeg:  cfg.Media.FFmpegPath,
			FFprobe: cfg.Media.FFprobePath,
			Timeout: cfg.Media.DownloadTimeout.Std(),
		}, transcriber, logger),
		Synth: synth.New(model, logger),
		Thumb: render.NewThumbnailer(cfg.Render.OutputDir, cfg.Render.FontPaths,
			&http.Client{Timeout: 30 * time.Second}, logger),
		Log: logger,
	})

	exporter := render.NewExporter(cfg.Render.OutputDir, logger)
	server := api.NewServer(runner, exporter, logger)

	go startMetricsServer(cfg.Server.MetricsPort)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
		cancel()
	}()

	log.Printf("Starting API server on port %d", cfg.Server.Port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

func startMetricsServer(port int) {
	metricsRouter := gin.New()
	metricsRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Printf("Starting metrics server on port %d", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), metricsRouter); err != nil {
		log.Printf("Metrics server error: %v", err)
	}
}
