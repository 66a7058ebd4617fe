// Package extract pulls recipe-relevant signal out of a rendered social
// media page. Image and text targets each run an ordered fallback chain:
// strategies are tried in priority order and the first non-empty result
// wins. An exhausted chain is a partial result, never a failure; only an
// unreachable page aborts extraction.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// minImageDimension rejects avatar and profile images, which render well
// below the main content image.
const minImageDimension = 200

// defaultImageHosts match the content-delivery hosts social platforms
// serve post media from.
var defaultImageHosts = []string{"scontent", "cdninstagram"}

// fallbackImageSelectors are tried in order when the main content
// container holds no acceptable image.
var fallbackImageSelectors = []string{
	"img[class*='x5yr21d']",
	"img[class*='_aagt']",
	"img[decoding='sync'][style*='width']",
	"img[class*='_aa1d']",
	"img[class*='_aagv']",
}

// captionSelector matches the caption-bearing leaf elements used as the
// second-level text fallback.
const captionSelector = "div._a9zs"

// PageSource renders a URL and returns its document HTML. Implemented by
// the headless browser session.
type PageSource interface {
	PageHTML(ctx context.Context, url string) (string, error)
}

// PageContent is the best-effort result of a page extraction. ImageURL is
// nil when every image strategy came up empty; that is an expected
// partial result downstream stages tolerate.
type PageContent struct {
	URL      string
	ImageURL *string
	Text     string
}

// Extractor runs the fallback chains against pages rendered by a source.
type Extractor struct {
	source     PageSource
	imageHosts []string
	log        *slog.Logger
}

// New builds an Extractor on top of a page source.
func New(source PageSource, log *slog.Logger) *Extractor {
	return &Extractor{source: source, imageHosts: defaultImageHosts, log: log}
}

// Extract renders the page and runs both target chains. An unreachable
// page returns an error; exhausted chains do not.
func (e *Extractor) Extract(ctx context.Context, url string) (*PageContent, error) {
	html, err := e.source.PageHTML(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("load page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	content := &PageContent{URL: url}
	content.ImageURL = e.findImage(doc)
	content.Text = e.findText(doc)

	if content.ImageURL == nil {
		e.log.Warn("no content image found", "url", url)
	}
	return content, nil
}

// imageStrategy is one level of the image fallback chain.
type imageStrategy struct {
	name string
	find func(doc *goquery.Document) *string
}

// findImage evaluates the image chain lazily until a strategy yields a
// match.
func (e *Extractor) findImage(doc *goquery.Document) *string {
	chain := []imageStrategy{
		{name: "main-content", find: func(doc *goquery.Document) *string {
			return e.matchImage(doc.Find("article img"))
		}},
	}
	for _, sel := range fallbackImageSelectors {
		selector := sel
		chain = append(chain, imageStrategy{name: selector, find: func(doc *goquery.Document) *string {
			return e.matchImage(doc.Find(selector))
		}})
	}

	for _, strategy := range chain {
		if src := strategy.find(doc); src != nil {
			e.log.Debug("image strategy matched", "strategy", strategy.name, "src", *src)
			return src
		}
	}
	return nil
}

// matchImage returns the first image in the selection whose source host
// matches a known content-delivery pattern and whose rendered dimensions
// both exceed the minimum.
func (e *Extractor) matchImage(sel *goquery.Selection) *string {
	var match *string
	sel.EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, ok := img.Attr("src")
		if !ok || !e.contentHost(src) {
			return true
		}
		if !largeEnough(img) {
			return true
		}
		match = &src
		return false
	})
	return match
}

func (e *Extractor) contentHost(src string) bool {
	for _, host := range e.imageHosts {
		if strings.Contains(src, host) {
			return true
		}
	}
	return false
}

func largeEnough(img *goquery.Selection) bool {
	width, errW := strconv.Atoi(img.AttrOr("width", ""))
	height, errH := strconv.Atoi(img.AttrOr("height", ""))
	if errW != nil || errH != nil {
		return false
	}
	return width > minImageDimension && height > minImageDimension
}

// findText runs the text chain: main content container, then caption
// elements in document order, then the whole page text. Each level is
// attempted only when the previous returned empty.
func (e *Extractor) findText(doc *goquery.Document) string {
	chain := []func(doc *goquery.Document) string{
		func(doc *goquery.Document) string {
			return strings.TrimSpace(doc.Find("article").First().Text())
		},
		func(doc *goquery.Document) string {
			var parts []string
			doc.Find(captionSelector).Each(func(_ int, s *goquery.Selection) {
				if text := strings.TrimSpace(s.Text()); text != "" {
					parts = append(parts, text)
				}
			})
			return strings.Join(parts, "\n")
		},
		func(doc *goquery.Document) string {
			return strings.TrimSpace(doc.Find("body").Text())
		},
	}

	for _, level := range chain {
		if text := level(doc); text != "" {
			return text
		}
	}
	return ""
}
