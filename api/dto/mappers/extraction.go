// ABOUTME: Mappers for converting between domain models and API DTOs
// ABOUTME: Tiptap HTML is rendered to Markdown here when a handler asks for it

package mappers

import (
	"github.com/anhbatoichoi/content-capture-universe/api/dto/responses"
	"github.com/anhbatoichoi/content-capture-universe/core/domain"
)

// ToExtractionResponse converts a job. With a converter, tiptap content is
// rendered to Markdown.
func ToExtractionResponse(job *domain.ExtractionJob, conv domain.MarkdownConverter, selectedID string) *responses.ExtractionResponse {
	if job == nil {
		return nil
	}

	content := job.Content
	if conv != nil && job.Source.NeedsConversion() && content != "" {
		content = conv.Convert(content)
	}

	return &responses.ExtractionResponse{
		ID:        job.ID,
		Status:    string(job.Status),
		Title:     job.Title,
		Content:   content,
		Error:     job.Error,
		Timestamp: job.Timestamp,
		URL:       job.URL,
		Source:    string(job.Source),
		Selected:  selectedID != "" && job.ID == selectedID,
	}
}

// ToExtractionResponses converts jobs as stored, without rendering
func ToExtractionResponses(jobs []*domain.ExtractionJob, selectedID string) []responses.ExtractionResponse {
	out := make([]responses.ExtractionResponse, 0, len(jobs))
	for _, job := range jobs {
		if r := ToExtractionResponse(job, nil, selectedID); r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// ToPageResponse converts captured page content
func ToPageResponse(page *domain.PageContent, conv domain.MarkdownConverter) *responses.PageResponse {
	if page == nil {
		return nil
	}

	content := page.Content
	if conv != nil {
		content = page.DisplayContent(conv)
	}

	images := page.Images
	if images == nil {
		images = []string{}
	}

	return &responses.PageResponse{
		URL:       page.URL,
		Title:     page.Title,
		Content:   content,
		RawText:   page.RawText,
		Images:    images,
		Timestamp: page.Timestamp,
		Source:    string(page.Source),
	}
}

// ToChatSessionResponse converts a session
func ToChatSessionResponse(session *domain.ChatSession, currentID string) *responses.ChatSessionResponse {
	if session == nil {
		return nil
	}

	messages := make([]responses.ChatMessageResponse, 0, len(session.Messages))
	for _, m := range session.Messages {
		messages = append(messages, responses.ChatMessageResponse{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}

	return &responses.ChatSessionResponse{
		ID:          session.ID,
		Title:       session.Title,
		LastUpdated: session.LastUpdated,
		Messages:    messages,
		Current:     session.ID == currentID,
	}
}

// ToSelectorSettingsResponse converts selector settings
func ToSelectorSettingsResponse(s domain.SelectorSettings) responses.SelectorSettingsResponse {
	return responses.SelectorSettingsResponse{
		Article: s.Article,
		Title:   s.Title,
		Content: s.Content,
		Images:  s.Images,
	}
}
