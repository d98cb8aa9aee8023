// ABOUTME: Response DTOs for the capture API
// ABOUTME: Shapes jobs, pages, chat sessions and settings for JSON clients

package responses

import "time"

// ExtractionResponse represents one extraction job
type ExtractionResponse struct {
	ID        string    `json:"id" doc:"Job id assigned by the extraction service"`
	Status    string    `json:"status" doc:"pending, done or failed"`
	Title     string    `json:"title" doc:"Job title"`
	Content   string    `json:"content,omitempty" doc:"Extracted content, Markdown when rendered"`
	Error     string    `json:"error,omitempty" doc:"Failure reason"`
	Timestamp time.Time `json:"timestamp" doc:"When the job was submitted"`
	URL       string    `json:"url,omitempty" doc:"Submitted page URL"`
	Source    string    `json:"source,omitempty" doc:"Capture source"`
	Selected  bool      `json:"selected" doc:"Whether this job is the selected one"`
}

// ExtractionListResponse lists jobs newest first
type ExtractionListResponse struct {
	Extractions []ExtractionResponse `json:"extractions"`
	Total       int                  `json:"total"`
	Polling     int                  `json:"polling" doc:"Jobs currently being polled"`
}

// ConvertResponse carries converted Markdown
type ConvertResponse struct {
	Markdown string `json:"markdown"`
}

// PageResponse represents captured page content
type PageResponse struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	RawText   string    `json:"rawText,omitempty"`
	Images    []string  `json:"images"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// ChatMessageResponse is one chat message
type ChatMessageResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp" doc:"Unix milliseconds"`
}

// ChatSessionResponse is one chat session
type ChatSessionResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	LastUpdated int64                 `json:"lastUpdated" doc:"Unix milliseconds"`
	Messages    []ChatMessageResponse `json:"messages"`
	Current     bool                  `json:"current"`
}

// SelectorSettingsResponse holds the effective selectors
type SelectorSettingsResponse struct {
	Article string `json:"article"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Images  string `json:"images"`
}
