// ABOUTME: Contracts for the remote services the core talks to
// ABOUTME: Covers extraction submit/status, chat, and polling metrics hooks

package interfaces

import "context"

// SubmitRequest is the payload sent to the extraction service on submit
type SubmitRequest struct {
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
	Source string `json:"source,omitempty"`
}

// StatusResponse is returned by both submit and status check.
// RequestID must be present on a successful submit.
type StatusResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Content   string `json:"content,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ExtractionService is the remote system that runs extraction jobs
type ExtractionService interface {
	// Submit starts a new extraction job
	Submit(ctx context.Context, req SubmitRequest) (*StatusResponse, error)

	// CheckStatus fetches the current state of a job
	CheckStatus(ctx context.Context, id string) (*StatusResponse, error)
}

// ChatRequest is the payload sent to the chat service
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

// ChatResponse carries the assistant reply
type ChatResponse struct {
	Message string `json:"message"`
}

// ChatService answers chat messages
type ChatService interface {
	Send(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// PollMetrics receives polling lifecycle events.
// Implementations must be safe for concurrent use.
type PollMetrics interface {
	// PollCompleted records one status check and its outcome status
	PollCompleted(status string)

	// PollFailed records one status check that failed at the transport level
	PollFailed()

	// ActivePollers reports the number of jobs currently being polled
	ActivePollers(n int)
}
