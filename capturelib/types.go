// ABOUTME: Public types for the capture library API
// ABOUTME: Wraps the internal domain models in stable, JSON-friendly structs

package capturelib

import (
	"time"

	"github.com/anhbatoichoi/content-capture-universe/core/domain"
)

// Job is an extraction job
type Job struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url,omitempty"`
	Source    string    `json:"source,omitempty"`
}

// Done reports whether the job will not change any more
func (j *Job) Done() bool {
	return domain.JobStatus(j.Status).IsTerminal()
}

// Page is content captured from a page. Content is Markdown for tiptap pages.
type Page struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	RawText   string    `json:"rawText,omitempty"`
	Images    []string  `json:"images"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// Source values accepted by Submit
const (
	SourceTiptap   = string(domain.PageSourceTiptap)
	SourceStandard = string(domain.PageSourceStandard)
)

func domainJobToPublic(j *domain.ExtractionJob, conv domain.MarkdownConverter) *Job {
	if j == nil {
		return nil
	}
	content := j.Content
	if conv != nil && j.Source.NeedsConversion() && content != "" {
		content = conv.Convert(content)
	}
	return &Job{
		ID:        j.ID,
		Status:    string(j.Status),
		Title:     j.Title,
		Content:   content,
		Error:     j.Error,
		Timestamp: j.Timestamp,
		URL:       j.URL,
		Source:    string(j.Source),
	}
}

func domainPageToPublic(p *domain.PageContent, conv domain.MarkdownConverter) *Page {
	if p == nil {
		return nil
	}
	images := append([]string{}, p.Images...)
	return &Page{
		URL:       p.URL,
		Title:     p.Title,
		Content:   p.DisplayContent(conv),
		RawText:   p.RawText,
		Images:    images,
		Timestamp: p.Timestamp,
		Source:    string(p.Source),
	}
}
