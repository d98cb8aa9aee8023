// ABOUTME: Chat session service that keeps conversations and relays messages to the chat backend
// ABOUTME: Sessions are kept newest first and persisted as one blob

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anhbatoichoi/content-capture-universe/core/domain"
	coreerrors "github.com/anhbatoichoi/content-capture-universe/core/errors"
	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
)

// StorageKey is the storage key holding the serialized sessions
const StorageKey = "chatSessions"

// ErrorReply is appended as the assistant message when the chat backend fails
const ErrorReply = "Sorry, there was an error processing your message. Please try again."

// Service manages chat sessions
type Service struct {
	backend interfaces.ChatService
	storage interfaces.Storage
	logger  interfaces.Logger
	now     func() time.Time

	mu        sync.Mutex
	sessions  []*domain.ChatSession
	currentID string

	persistMu sync.Mutex
}

// NewService creates a chat service. storage may be nil.
func NewService(backend interfaces.ChatService, storage interfaces.Storage, logger interfaces.Logger) *Service {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &Service{
		backend: backend,
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// Load restores persisted sessions. The most recent session becomes current.
func (s *Service) Load(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}

	data, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			return nil
		}
		return coreerrors.WrapError(err, "failed to read chat sessions")
	}

	var sessions []*domain.ChatSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		s.logger.Warn("Discarding malformed chat sessions", map[string]interface{}{"error": err.Error()})
		sessions = nil
	}

	valid := sessions[:0]
	for _, session := range sessions {
		if session == nil || session.ID == "" {
			continue
		}
		if session.Messages == nil {
			session.Messages = []domain.ChatMessage{}
		}
		valid = append(valid, session)
	}

	s.mu.Lock()
	s.sessions = valid
	s.currentID = ""
	if len(valid) > 0 {
		s.currentID = valid[0].ID
	}
	s.mu.Unlock()

	s.logger.Info("Chat sessions restored", map[string]interface{}{"count": len(valid)})
	return nil
}

// Sessions returns copies of all sessions, newest first
func (s *Service) Sessions() []*domain.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.ChatSession, len(s.sessions))
	for i, session := range s.sessions {
		out[i] = session.Clone()
	}
	return out
}

// Current returns the current session, falling back to the newest one
func (s *Service) Current() (*domain.ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.currentLocked()
	if session == nil {
		return nil, false
	}
	return session.Clone(), true
}

// CreateSession starts an empty session and makes it current
func (s *Service) CreateSession() *domain.ChatSession {
	s.mu.Lock()
	session := s.createLocked()
	out := session.Clone()
	s.mu.Unlock()

	s.persist()
	return out
}

// SwitchSession makes the session with the given id current
func (s *Service) SwitchSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(id) == nil {
		return &coreerrors.NotFoundError{Resource: "chat session", ID: id}
	}
	s.currentID = id
	return nil
}

// SendMessage appends the user message to the current session (creating one
// if needed), asks the backend for a reply and appends it. Backend failures
// become ErrorReply rather than an error.
func (s *Service) SendMessage(ctx context.Context, text string) (*domain.ChatSession, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &coreerrors.ValidationError{Field: "message", Message: "message cannot be empty"}
	}

	s.mu.Lock()
	session := s.currentLocked()
	if session == nil {
		session = s.createLocked()
	}
	sessionID := session.ID
	s.appendLocked(session, domain.ChatRoleUser, text)
	s.mu.Unlock()

	s.persist()

	reply := ErrorReply
	resp, err := s.backend.Send(ctx, interfaces.ChatRequest{Message: text, ConversationID: sessionID})
	switch {
	case err != nil:
		s.logger.Error("Chat request failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	case resp == nil:
		s.logger.Error("Chat request returned no reply", map[string]interface{}{"session_id": sessionID})
	default:
		reply = resp.Message
	}

	s.mu.Lock()
	session = s.findLocked(sessionID)
	if session == nil {
		s.mu.Unlock()
		return nil, &coreerrors.NotFoundError{Resource: "chat session", ID: sessionID}
	}
	s.appendLocked(session, domain.ChatRoleAssistant, reply)
	out := session.Clone()
	s.mu.Unlock()

	s.persist()
	return out, nil
}

func (s *Service) currentLocked() *domain.ChatSession {
	if s.currentID != "" {
		if session := s.findLocked(s.currentID); session != nil {
			return session
		}
	}
	if len(s.sessions) > 0 {
		return s.sessions[0]
	}
	return nil
}

func (s *Service) createLocked() *domain.ChatSession {
	session := &domain.ChatSession{
		ID:          "session_" + uuid.NewString(),
		Title:       fmt.Sprintf("Chat %d", len(s.sessions)+1),
		LastUpdated: s.now().UnixMilli(),
		Messages:    []domain.ChatMessage{},
	}
	s.sessions = append([]*domain.ChatSession{session}, s.sessions...)
	s.currentID = session.ID
	return session
}

func (s *Service) findLocked(id string) *domain.ChatSession {
	for _, session := range s.sessions {
		if session.ID == id {
			return session
		}
	}
	return nil
}

func (s *Service) appendLocked(session *domain.ChatSession, role domain.ChatRole, content string) {
	now := s.now().UnixMilli()
	session.Messages = append(session.Messages, domain.ChatMessage{
		ID:        "msg_" + uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	session.LastUpdated = now
}

// persist writes all sessions; nothing is written while there are none
func (s *Service) persist() {
	if s.storage == nil {
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if len(s.sessions) == 0 {
		s.mu.Unlock()
		return
	}
	data, err := json.Marshal(s.sessions)
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Failed to encode chat sessions", map[string]interface{}{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.storage.Set(ctx, StorageKey, data); err != nil {
		s.logger.Warn("Failed to persist chat sessions", map[string]interface{}{"error": err.Error()})
	}
}
