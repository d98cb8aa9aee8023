// ABOUTME: Content handlers for the Huma API
// ABOUTME: HTML to Markdown conversion and whole-page capture

package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/anhbatoichoi/content-capture-universe/api/dto/mappers"
	"github.com/anhbatoichoi/content-capture-universe/api/dto/requests"
	"github.com/anhbatoichoi/content-capture-universe/api/dto/responses"
	"github.com/anhbatoichoi/content-capture-universe/core/domain"
)

// CaptureService turns page HTML into page content
type CaptureService interface {
	Capture(ctx context.Context, pageURL, html string) (*domain.PageContent, error)
}

// ContentHandler handles conversion and capture requests
type ContentHandler struct {
	converter domain.MarkdownConverter
	capture   CaptureService
}

// NewContentHandler creates a new content handler
func NewContentHandler(converter domain.MarkdownConverter, capture CaptureService) *ContentHandler {
	return &ContentHandler{
		converter: converter,
		capture:   capture,
	}
}

// RegisterRoutes registers all content routes
func (h *ContentHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "convertHTML",
		Method:      http.MethodPost,
		Path:        "/convert",
		Summary:     "Convert HTML to Markdown",
		Description: "Converts an HTML fragment to Markdown. Malformed HTML never fails.",
		Tags:        []string{"Content"},
	}, h.Convert)

	huma.Register(api, huma.Operation{
		OperationID: "capturePage",
		Method:      http.MethodPost,
		Path:        "/capture",
		Summary:     "Capture page content",
		Description: "Extracts title, text and images from page HTML using the configured selectors. Tiptap content is returned as Markdown unless raw is set.",
		Tags:        []string{"Content"},
	}, h.Capture)
}

// ConvertInput defines the input for the Convert operation
type ConvertInput struct {
	Body requests.ConvertRequest
}

// ConvertOutput defines the output for the Convert operation
type ConvertOutput struct {
	Body responses.ConvertResponse
}

// CaptureInput defines the input for the Capture operation
type CaptureInput struct {
	Body requests.CaptureRequest
}

// CaptureOutput defines the output for the Capture operation
type CaptureOutput struct {
	Body *responses.PageResponse
}

// Convert handles POST /convert
func (h *ContentHandler) Convert(ctx context.Context, input *ConvertInput) (*ConvertOutput, error) {
	out := &ConvertOutput{}
	out.Body.Markdown = h.converter.Convert(input.Body.HTML)
	return out, nil
}

// Capture handles POST /capture
func (h *ContentHandler) Capture(ctx context.Context, input *CaptureInput) (*CaptureOutput, error) {
	page, err := h.capture.Capture(ctx, input.Body.URL, input.Body.HTML)
	if err != nil {
		return nil, toHumaError(err)
	}

	var conv domain.MarkdownConverter = h.converter
	if input.Body.Raw {
		conv = nil
	}
	return &CaptureOutput{Body: mappers.ToPageResponse(page, conv)}, nil
}
