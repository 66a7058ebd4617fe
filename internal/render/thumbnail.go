// Package render produces the two human-facing artifacts derived from a
// recipe record: the composited thumbnail image and the paginated PDF.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Canvas geometry. The title wraps inside the canvas width minus both
// side margins; text stacks upward from a baseline near the bottom.
const (
	canvasWidth  = 1280
	canvasHeight = 720

	sideMargin    = 40
	shadowOffset  = 2
	titleBaseline = canvasHeight - 140
	lineAdvance   = 50
	macroBaseline = canvasHeight - 60

	titleFontSize = 48
	macroFontSize = 32

	jpegQuality = 95
)

// Thumbnailer composites recipe thumbnails. Font candidates are tried in
// order; if none loads, a built-in face keeps the pipeline alive with
// degraded typography.
type Thumbnailer struct {
	client    *http.Client
	outputDir string
	fontPaths []string
	log       *slog.Logger
}

// NewThumbnailer builds a compositor writing into outputDir.
func NewThumbnailer(outputDir string, fontPaths []string, client *http.Client, log *slog.Logger) *Thumbnailer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Thumbnailer{client: client, outputDir: outputDir, fontPaths: fontPaths, log: log}
}

// Compose fetches the base image, letterboxes it onto a 1280x720 white
// canvas, overlays the bottom-third gradient and shadowed text, and
// persists the flattened JPEG under a unique name. It fails when the
// image cannot be fetched or the file cannot be written.
func (t *Thumbnailer) Compose(ctx context.Context, title, macroLine, imageURL string) (string, error) {
	base, err := t.fetchImage(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("fetch base image: %w", err)
	}

	dc := gg.NewContext(canvasWidth, canvasHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	fitted := letterbox(base)
	dc.DrawImage(fitted, (canvasWidth-fitted.Bounds().Dx())/2, (canvasHeight-fitted.Bounds().Dy())/2)

	drawBottomGradient(dc)

	titleFace := t.loadFace(titleFontSize)
	macroFace := t.loadFace(macroFontSize)

	dc.SetFontFace(titleFace)
	lines := WrapLines(title, canvasWidth-2*sideMargin, func(s string) float64 {
		w, _ := dc.MeasureString(s)
		return w
	})
	y := float64(titleBaseline - (len(lines)-1)*lineAdvance)
	for _, line := range lines {
		drawShadowed(dc, line, sideMargin, y)
		y += lineAdvance
	}

	dc.SetFontFace(macroFace)
	drawShadowed(dc, macroLine, sideMargin, macroBaseline)

	if err := os.MkdirAll(t.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(t.outputDir, fmt.Sprintf("recipe_thumbnail_%s.jpg", uuid.NewString()))
	if err := saveJPEG(path, dc.Image()); err != nil {
		return "", fmt.Errorf("persist thumbnail: %w", err)
	}

	t.log.Info("thumbnail composited", "path", path, "title_lines", len(lines))
	return path, nil
}

func (t *Thumbnailer) fetchImage(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// letterbox scales the image to fit fully within the canvas, preserving
// aspect ratio. The result never exceeds the canvas in either dimension.
func letterbox(src image.Image) image.Image {
	srcW := src.Bounds().Dx()
	srcH := src.Bounds().Dy()

	widthRatio := float64(canvasWidth) / float64(srcW)
	heightRatio := float64(canvasHeight) / float64(srcH)

	var newW, newH int
	if widthRatio < heightRatio {
		newW = canvasWidth
		newH = int(float64(srcH) * widthRatio)
	} else {
		newH = canvasHeight
		newW = int(float64(srcW) * heightRatio)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// drawBottomGradient lays a transparent-to-black vertical gradient over
// the bottom third of the canvas so text stays legible over any imagery.
func drawBottomGradient(dc *gg.Context) {
	top := float64(canvasHeight - canvasHeight/3)
	grad := gg.NewLinearGradient(0, top, 0, canvasHeight)
	grad.AddColorStop(0, color.RGBA{0, 0, 0, 0})
	grad.AddColorStop(1, color.RGBA{0, 0, 0, 255})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, top, canvasWidth, float64(canvasHeight)/3)
	dc.Fill()
}

// drawShadowed renders the line twice: an offset dark copy, then white on
// top, so the text reads on both light and dark backgrounds.
func drawShadowed(dc *gg.Context, line string, x, y float64) {
	dc.SetRGB(0, 0, 0)
	dc.DrawString(line, x+shadowOffset, y+shadowOffset)
	dc.SetRGB(1, 1, 1)
	dc.DrawString(line, x, y)
}

// loadFace tries the candidate font paths in order and falls back to the
// built-in face. Font trouble degrades typography, never the pipeline.
func (t *Thumbnailer) loadFace(points float64) font.Face {
	for _, path := range t.fontPaths {
		face, err := gg.LoadFontFace(path, points)
		if err == nil {
			return face
		}
	}
	t.log.Warn("no candidate font loaded, using built-in face", "size", points)
	return basicfont.Face7x13
}

// WrapLines greedily packs words into lines no wider than maxWidth as
// reported by measure. A single word wider than the limit is placed alone
// on its own line rather than split.
func WrapLines(text string, maxWidth float64, measure func(string) float64) []string {
	words := strings.Fields(text)
	var lines []string
	var current string

	for _, word := range words {
		if current == "" {
			// A word always starts a line, even when overlong.
			current = word
			continue
		}
		candidate := current + " " + word
		if measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func saveJPEG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
