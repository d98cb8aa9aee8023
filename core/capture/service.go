// ABOUTME: Page capture service that turns a page's HTML into PageContent
// ABOUTME: Detects tiptap editors, falls back to selector scraping and then to readability

package capture

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/anhbatoichoi/content-capture-universe/core/domain"
	coreerrors "github.com/anhbatoichoi/content-capture-universe/core/errors"
	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
)

// tiptapSelector marks an embedded rich-text editor whose HTML is captured as-is
const tiptapSelector = ".tiptap"

// SelectorSource supplies the selectors used for standard pages
type SelectorSource interface {
	Get(ctx context.Context) (domain.SelectorSettings, error)
}

// Options configures the capture service
type Options struct {
	// ReadabilityFallback extracts the main text with readability when the
	// content selectors match nothing
	ReadabilityFallback bool
	Logger              interfaces.Logger
}

// Service captures page content
type Service struct {
	selectors SelectorSource
	opts      Options
	logger    interfaces.Logger
	now       func() time.Time
}

// NewService creates a capture service. A nil selector source uses the defaults.
func NewService(selectors SelectorSource, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &Service{
		selectors: selectors,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Capture extracts the readable content of a page
func (s *Service) Capture(ctx context.Context, pageURL, html string) (*domain.PageContent, error) {
	base, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || !base.IsAbs() {
		return nil, &coreerrors.ValidationError{Field: "url", Message: "must be an absolute URL"}
	}
	if strings.TrimSpace(html) == "" {
		return nil, &coreerrors.ValidationError{Field: "html", Message: "html cannot be empty"}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, coreerrors.WrapError(err, "failed to parse page")
	}

	page := &domain.PageContent{
		URL:       base.String(),
		Images:    []string{},
		Timestamp: s.now().UTC(),
	}

	if editor := doc.Find(tiptapSelector).First(); editor.Length() > 0 {
		s.captureEditor(doc, editor, base, page)
		return page, nil
	}

	selectors := domain.DefaultSelectorSettings()
	if s.selectors != nil {
		if selectors, err = s.selectors.Get(ctx); err != nil {
			s.logger.Warn("Using default selectors", map[string]interface{}{"error": err.Error()})
			selectors = domain.DefaultSelectorSettings()
		}
	}

	s.captureStandard(doc, selectors, base, page)

	if page.Content == "" && s.opts.ReadabilityFallback {
		s.applyReadability(html, base, page)
	}

	s.logger.Debug("Page captured", map[string]interface{}{
		"url":    page.URL,
		"source": string(page.Source),
		"images": len(page.Images),
	})
	return page, nil
}

func (s *Service) captureEditor(doc *goquery.Document, editor *goquery.Selection, base *url.URL, page *domain.PageContent) {
	page.Source = domain.PageSourceTiptap
	page.Title = documentTitle(doc)
	page.Content, _ = editor.Html()
	page.RawText = editor.Text()
	page.Images = collectImages(editor.Find("img"), base)
}

func (s *Service) captureStandard(doc *goquery.Document, selectors domain.SelectorSettings, base *url.URL, page *domain.PageContent) {
	page.Source = domain.PageSourceStandard

	page.Title = documentTitle(doc)
	if heading := doc.Find(selectors.Title).First(); heading.Length() > 0 {
		page.Title = strings.TrimSpace(heading.Text())
	}

	var content strings.Builder
	doc.Find(selectors.Content).Each(func(_ int, sel *goquery.Selection) {
		content.WriteString(strings.TrimSpace(sel.Text()))
		content.WriteString("\n\n")
	})
	page.Content = content.String()

	page.Images = collectImages(doc.Find(selectors.Images), base)
}

func (s *Service) applyReadability(html string, base *url.URL, page *domain.PageContent) {
	article, err := readability.FromReader(strings.NewReader(html), base)
	if err != nil {
		s.logger.Debug("Readability fallback failed", map[string]interface{}{
			"url":   page.URL,
			"error": err.Error(),
		})
		return
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return
	}
	page.Content = text + "\n\n"
	if page.Title == "" {
		page.Title = strings.TrimSpace(article.Title)
	}
	if len(page.Images) == 0 && article.Image != "" {
		if src, ok := resolveImage(article.Image, base); ok {
			page.Images = append(page.Images, src)
		}
	}
}

func documentTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// collectImages resolves image sources against the page URL, dropping
// data URIs, empty values and duplicates while keeping document order
func collectImages(sel *goquery.Selection, base *url.URL) []string {
	images := []string{}
	seen := make(map[string]bool)

	sel.Each(func(_ int, img *goquery.Selection) {
		raw, _ := img.Attr("src")
		src, ok := resolveImage(raw, base)
		if !ok || seen[src] {
			return
		}
		seen[src] = true
		images = append(images, src)
	})
	return images
}

func resolveImage(raw string, base *url.URL) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(strings.ToLower(raw), "data:") {
		return "", false
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}
