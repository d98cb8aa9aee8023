// ABOUTME: Simulated remote extraction service used for local development
// ABOUTME: Accepts jobs, finishes them at random on status checks and echoes chat messages

package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
)

// SampleContent is returned for every finished job
const SampleContent = "# Extracted Content\n\nThis is some sample markdown content that was extracted.\n\n## Section 1\n\nSome details here...\n\n## Section 2\n\nMore information..."

// DefaultDoneProbability is the chance that a status check finishes a pending job
const DefaultDoneProbability = 0.3

type stub struct {
	doneProbability float64
	latency         time.Duration
	random          func() float64
	now             func() time.Time
	logger          interfaces.Logger

	mu     sync.Mutex
	lastMS int64
	done   map[string]bool
}

func newStub(random func() float64, doneProbability float64, latency time.Duration, logger interfaces.Logger) *stub {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &stub{
		doneProbability: doneProbability,
		latency:         latency,
		random:          random,
		now:             time.Now,
		logger:          logger,
		done:            make(map[string]bool),
	}
}

// nextID returns req_<unix-ms>, bumped past the previous id when two
// submits land in the same millisecond
func (s *stub) nextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := s.now().UnixMilli()
	if ms <= s.lastMS {
		ms = s.lastMS + 1
	}
	s.lastMS = ms
	return fmt.Sprintf("req_%d", ms)
}

// status reports whether id is done, rolling the dice for pending jobs
func (s *stub) status(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done[id] {
		return true
	}
	if s.random() < s.doneProbability {
		s.done[id] = true
		return true
	}
	return false
}

func (s *stub) sleep(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ExtractInput is the submit request body
type ExtractInput struct {
	Body interfaces.SubmitRequest
}

// StatusInput names the job to check
type StatusInput struct {
	ID string `path:"id" doc:"Job id returned by submit"`
}

// StatusOutput is returned by submit and status
type StatusOutput struct {
	Body interfaces.StatusResponse
}

// ChatInput is the chat request body
type ChatInput struct {
	Body interfaces.ChatRequest
}

// ChatOutput carries the assistant reply
type ChatOutput struct {
	Body interfaces.ChatResponse
}

func (s *stub) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "extract",
		Method:      http.MethodPost,
		Path:        "/api/extract",
		Summary:     "Start an extraction job",
		Tags:        []string{"Extraction"},
	}, s.handleExtract)

	huma.Register(api, huma.Operation{
		OperationID: "status",
		Method:      http.MethodGet,
		Path:        "/api/status/{id}",
		Summary:     "Check an extraction job",
		Tags:        []string{"Extraction"},
	}, s.handleStatus)

	huma.Register(api, huma.Operation{
		OperationID: "chat",
		Method:      http.MethodPost,
		Path:        "/api/chat",
		Summary:     "Answer a chat message",
		Tags:        []string{"Chat"},
	}, s.handleChat)
}

func (s *stub) handleExtract(ctx context.Context, input *ExtractInput) (*StatusOutput, error) {
	if input.Body.URL == "" {
		return nil, huma.Error400BadRequest("url is required")
	}
	if err := s.sleep(ctx); err != nil {
		return nil, err
	}

	id := s.nextID()
	s.logger.Info("Extraction accepted", map[string]interface{}{
		"job_id": id,
		"url":    input.Body.URL,
	})
	return &StatusOutput{Body: interfaces.StatusResponse{RequestID: id, Status: "pending"}}, nil
}

func (s *stub) handleStatus(ctx context.Context, input *StatusInput) (*StatusOutput, error) {
	if err := s.sleep(ctx); err != nil {
		return nil, err
	}

	out := &StatusOutput{Body: interfaces.StatusResponse{RequestID: input.ID, Status: "pending"}}
	if s.status(input.ID) {
		out.Body.Status = "done"
		out.Body.Content = SampleContent
	}
	s.logger.Debug("Status checked", map[string]interface{}{
		"job_id": input.ID,
		"status": out.Body.Status,
	})
	return out, nil
}

func (s *stub) handleChat(ctx context.Context, input *ChatInput) (*ChatOutput, error) {
	if err := s.sleep(ctx); err != nil {
		return nil, err
	}
	return &ChatOutput{Body: interfaces.ChatResponse{
		Message: fmt.Sprintf("You said: %s", input.Body.Message),
	}}, nil
}
