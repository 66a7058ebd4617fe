// Package api exposes the HTTP surface: one endpoint running the full
// extraction pipeline and one re-rendering a previously produced recipe
// into the printable document.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SquizAI/recipies01/internal/models"
	"github.com/SquizAI/recipies01/internal/pipeline"
)

// Runner executes one extraction pipeline run.
type Runner interface {
	Run(ctx context.Context, url string) (*models.Recipe, error)
}

// DocumentExporter persists the PDF document for a recipe and returns
// its path.
type DocumentExporter interface {
	Export(recipe *models.Recipe, thumbnailPath string) (string, error)
}

// Server is the main API handler.
type Server struct {
	Router   *gin.Engine
	pipeline Runner
	exporter DocumentExporter
	log      *slog.Logger
}

// NewServer wires the routes.
func NewServer(runner Runner, exporter DocumentExporter, log *slog.Logger) *Server {
	router := gin.Default()

	s := &Server{
		Router:   router,
		pipeline: runner,
		exporter: exporter,
		log:      log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.Router.Group("/api/v1")
	{
		v1.POST("/extract", s.ExtractRecipe)
		v1.POST("/recipes/export", s.ExportRecipe)
	}
}

// ExtractRecipe runs the full acquisition, synthesis, shopping-list and
// thumbnail pipeline for a post URL.
func (s *Server) ExtractRecipe(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid url"})
		return
	}

	recipe, err := s.pipeline.Run(c.Request.Context(), req.URL)
	if err != nil {
		status, message := classifyPipelineError(err)
		s.log.Error("extraction failed", "url", req.URL, "err", err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipe": recipe,
		"text":   recipe.Summary(),
	})
}

// ExportRecipe re-derives the printable document from a recipe payload
// previously returned by ExtractRecipe.
func (s *Server) ExportRecipe(c *gin.Context) {
	var recipe models.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe payload"})
		return
	}
	if err := recipe.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	thumbnail := ""
	if recipe.ThumbnailURL != nil {
		thumbnail = *recipe.ThumbnailURL
	}

	path, err := s.exporter.Export(&recipe, thumbnail)
	if err != nil {
		renderErr := &pipeline.RenderError{Artifact: "document", Err: err}
		s.log.Error("document export failed", "title", recipe.Title, "err", renderErr)
		status, message := classifyPipelineError(renderErr)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.FileAttachment(path, fmt.Sprintf("recipe_%s.pdf", recipe.Slug()))
}

// classifyPipelineError maps the pipeline taxonomy onto HTTP statuses
// with a stage-attributable message.
func classifyPipelineError(err error) (int, string) {
	var acqErr *pipeline.AcquisitionError
	if errors.As(err, &acqErr) {
		return http.StatusBadGateway, "could not access the post content"
	}
	var synthErr *pipeline.SynthesisError
	if errors.As(err, &synthErr) {
		return http.StatusInternalServerError, "recipe synthesis failed"
	}
	var renderErr *pipeline.RenderError
	if errors.As(err, &renderErr) {
		return http.StatusInternalServerError, fmt.Sprintf("rendering %s failed", renderErr.Artifact)
	}
	return http.StatusInternalServerError, "recipe extraction failed"
}
