package handlers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/anhbatoichoi/content-capture-universe/core/chat"
	"github.com/anhbatoichoi/content-capture-universe/core/extraction"
	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
	"github.com/anhbatoichoi/content-capture-universe/infrastructure/storage/memory"
)

// mockExtractionService is a mock implementation of the ExtractionService interface
type mockExtractionService struct {
	mu              sync.Mutex
	next            int
	submitFunc      func(ctx context.Context, req interfaces.SubmitRequest) (*interfaces.StatusResponse, error)
	checkStatusFunc func(ctx context.Context, id string) (*interfaces.StatusResponse, error)
}

func (m *mockExtractionService) Submit(ctx context.Context, req interfaces.SubmitRequest) (*interfaces.StatusResponse, error) {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, req)
	}
	m.mu.Lock()
	m.next++
	id := fmt.Sprintf("req_%d", m.next)
	m.mu.Unlock()
	return &interfaces.StatusResponse{RequestID: id, Status: "pending"}, nil
}

func (m *mockExtractionService) CheckStatus(ctx context.Context, id string) (*interfaces.StatusResponse, error) {
	if m.checkStatusFunc != nil {
		return m.checkStatusFunc(ctx, id)
	}
	return &interfaces.StatusResponse{RequestID: id, Status: "pending"}, nil
}

// mockChatService is a mock implementation of the ChatService interface
type mockChatService struct {
	sendFunc func(ctx context.Context, req interfaces.ChatRequest) (*interfaces.ChatResponse, error)
}

func (m *mockChatService) Send(ctx context.Context, req interfaces.ChatRequest) (*interfaces.ChatResponse, error) {
	if m.sendFunc != nil {
		return m.sendFunc(ctx, req)
	}
	return &interfaces.ChatResponse{Message: "reply to " + req.Message}, nil
}

// newTestStore builds a job store that polls rarely and is closed with the test
func newTestStore(t *testing.T, service interfaces.ExtractionService) *extraction.JobStore {
	t.Helper()
	cfg := extraction.DefaultStoreConfig()
	cfg.Scheduler.Interval = time.Hour
	store := extraction.NewJobStore(service, memory.NewStorage(), cfg)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestChat(service interfaces.ChatService) *chat.Service {
	return chat.NewService(service, memory.NewStorage(), nil)
}
