// Package pipeline orchestrates one extraction run: acquire page and
// video signal, synthesize the recipe, derive the shopping list, and
// composite the thumbnail. The two acquisition legs are independent and
// run concurrently; everything after their join point is sequential.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SquizAI/recipies01/internal/extract"
	"github.com/SquizAI/recipies01/internal/media"
	"github.com/SquizAI/recipies01/internal/models"
	"github.com/SquizAI/recipies01/internal/monitoring"
	"github.com/SquizAI/recipies01/internal/synth"
)

// PageExtractor acquires page signal (image URL, text).
type PageExtractor interface {
	Extract(ctx context.Context, url string) (*extract.PageContent, error)
}

// VideoAcquirer acquires the optional transcript. Its failures are
// absorbed internally; it never returns an error.
type VideoAcquirer interface {
	Process(ctx context.Context, url string) media.VideoResult
}

// Synthesizer performs the two schema-constrained generative calls.
type Synthesizer interface {
	ExtractRecipe(ctx context.Context, content synth.Content) (*models.Recipe, error)
	BuildShoppingList(ctx context.Context, recipe *models.Recipe) ([]models.ShoppingItem, error)
}

// ThumbnailComposer renders the thumbnail artifact.
type ThumbnailComposer interface {
	Compose(ctx context.Context, title, macroLine, imageURL string) (string, error)
}

// Deps wires the pipeline's collaborators.
type Deps struct {
	Page  PageExtractor
	Video VideoAcquirer
	Synth Synthesizer
	Thumb ThumbnailComposer
	Log   *slog.Logger
}

// Pipeline runs the extraction workflow.
type Pipeline struct {
	page  PageExtractor
	video VideoAcquirer
	synth Synthesizer
	thumb ThumbnailComposer
	log   *slog.Logger
}

// New constructs the orchestrator.
func New(deps Deps) *Pipeline {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		page:  deps.Page,
		video: deps.Video,
		synth: deps.Synth,
		thumb: deps.Thumb,
		log:   log,
	}
}

// Run executes the full pipeline for one URL. The recipe record is
// mutated exactly twice after synthesis: shopping list assignment, then
// thumbnail reference assignment; never after rendering begins.
func (p *Pipeline) Run(ctx context.Context, url string) (*models.Recipe, error) {
	var (
		wg       sync.WaitGroup
		videoRes media.VideoResult
		content  *extract.PageContent
		pageErr  error
	)

	acqStart := time.Now()
	wg.Add(2)
	go func() {
		defer wg.Done()
		videoRes = p.video.Process(ctx, url)
	}()
	go func() {
		defer wg.Done()
		content, pageErr = p.page.Extract(ctx, url)
	}()
	wg.Wait()
	monitoring.ObserveStage("acquisition", acqStart, pageErr)

	if pageErr != nil {
		return nil, &AcquisitionError{URL: url, Err: pageErr}
	}

	if videoRes.Transcript == nil {
		p.log.Info("no transcript acquired", "url", url)
	}
	if videoRes.DurationSeconds != nil {
		p.log.Debug("video duration", "seconds", *videoRes.DurationSeconds)
	}

	synthStart := time.Now()
	recipe, err := p.synth.ExtractRecipe(ctx, synth.Content{
		Text:       content.Text,
		Transcript: videoRes.Transcript,
		SourceURL:  url,
	})
	monitoring.ObserveStage("synthesis", synthStart, err)
	if err != nil {
		return nil, &SynthesisError{Err: err}
	}

	listStart := time.Now()
	items, err := p.synth.BuildShoppingList(ctx, recipe)
	monitoring.ObserveStage("shopping_list", listStart, err)
	if err != nil {
		return nil, &SynthesisError{Err: err}
	}
	recipe.ShoppingList = items

	if content.ImageURL != nil {
		thumbStart := time.Now()
		path, err := p.thumb.Compose(ctx, recipe.Title, recipe.MacroSummary(), *content.ImageURL)
		monitoring.ObserveStage("thumbnail", thumbStart, err)
		if err != nil {
			// Hard for this artifact only; the run continues without
			// a thumbnail and document export degrades to text cover.
			p.log.Error("thumbnail compositing failed", "err", err)
		} else {
			recipe.ThumbnailURL = &path
		}
	}

	return recipe, nil
}
