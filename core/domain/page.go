// ABOUTME: Page content domain model produced by page capture
// ABOUTME: Mirrors the message a content script hands to the side panel

package domain

import "time"

// PageContent is the readable content captured from one page
type PageContent struct {
	URL       string     `json:"url"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	RawText   string     `json:"rawText,omitempty"`
	Images    []string   `json:"images"`
	Timestamp time.Time  `json:"timestamp"`
	Source    PageSource `json:"source"`
}

// MarkdownConverter turns an HTML fragment into Markdown
type MarkdownConverter interface {
	Convert(html string) string
}

// DisplayContent returns content ready for display: tiptap HTML is converted
// to Markdown, standard content is returned unchanged.
func (p *PageContent) DisplayContent(conv MarkdownConverter) string {
	if p.Source.NeedsConversion() && conv != nil {
		return conv.Convert(p.Content)
	}
	return p.Content
}
