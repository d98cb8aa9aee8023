// ABOUTME: Chat handlers for the Huma API
// ABOUTME: List, create and switch sessions and send messages to the current one

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

// ChatSessions is the chat session service used by the handlers
type ChatSessions interface {
	Sessions() []*domain.ChatSession
	Current() (*domain.ChatSession, bool)
	CreateSession() *domain.ChatSession
	SwitchSession(id string) error
	SendMessage(ctx context.Context, text string) (*domain.ChatSession, error)
}

// ChatHandler handles chat requests
type ChatHandler struct {
	chat ChatSessions
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat ChatSessions) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// RegisterRoutes registers all chat routes
func (h *ChatHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listChatSessions",
		Method:      http.MethodGet,
		Path:        "/chat/sessions",
		Summary:     "List chat sessions",
		Description: "Returns all sessions, newest first",
		Tags:        []string{"Chat"},
	}, h.ListSessions)

	huma.Register(api, huma.Operation{
		OperationID:   "createChatSession",
		Method:        http.MethodPost,
		Path:          "/chat/sessions",
		Summary:       "Start a new chat session",
		Tags:          []string{"Chat"},
		DefaultStatus: http.StatusCreated,
	}, h.CreateSession)

	huma.Register(api, huma.Operation{
		OperationID: "switchChatSession",
		Method:      http.MethodPut,
		Path:        "/chat/sessions/current",
		Summary:     "Switch the current chat session",
		Tags:        []string{"Chat"},
	}, h.SwitchSession)

	huma.Register(api, huma.Operation{
		OperationID: "sendChatMessage",
		Method:      http.MethodPost,
		Path:        "/chat/messages",
		Summary:     "Send a chat message",
		Description: "Appends the message and the assistant reply to the current session",
		Tags:        []string{"Chat"},
	}, h.SendMessage)
}

// ChatSessionListOutput wraps the session list
type ChatSessionListOutput struct {
	Body struct {
		Sessions []responses.ChatSessionResponse `json:"sessions"`
	}
}

// ChatSessionOutput wraps one session
type ChatSessionOutput struct {
	Body *responses.ChatSessionResponse
}

// SwitchSessionInput defines the input for the SwitchSession operation
type SwitchSessionInput struct {
	Body requests.SwitchSessionRequest
}

// SendMessageInput defines the input for the SendMessage operation
type SendMessageInput struct {
	Body requests.SendMessageRequest
}

// ListSessions handles GET /chat/sessions
func (h *ChatHandler) ListSessions(ctx context.Context, input *struct{}) (*ChatSessionListOutput, error) {
	currentID := ""
	if current, ok := h.chat.Current(); ok {
		currentID = current.ID
	}

	out := &ChatSessionListOutput{}
	out.Body.Sessions = make([]responses.ChatSessionResponse, 0)
	for _, session := range h.chat.Sessions() {
		out.Body.Sessions = append(out.Body.Sessions, *mappers.ToChatSessionResponse(session, currentID))
	}
	return out, nil
}

// CreateSession handles POST /chat/sessions
func (h *ChatHandler) CreateSession(ctx context.Context, input *struct{}) (*ChatSessionOutput, error) {
	session := h.chat.CreateSession()
	return &ChatSessionOutput{Body: mappers.ToChatSessionResponse(session, session.ID)}, nil
}

// SwitchSession handles PUT /chat/sessions/current
func (h *ChatHandler) SwitchSession(ctx context.Context, input *SwitchSessionInput) (*ChatSessionOutput, error) {
	if err := h.chat.SwitchSession(input.Body.ID); err != nil {
		return nil, toHumaError(err)
	}
	session, _ := h.chat.Current()
	return &ChatSessionOutput{Body: mappers.ToChatSessionResponse(session, input.Body.ID)}, nil
}

// SendMessage handles POST /chat/messages
func (h *ChatHandler) SendMessage(ctx context.Context, input *SendMessageInput) (*ChatSessionOutput, error) {
	session, err := h.chat.SendMessage(ctx, input.Body.Message)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ChatSessionOutput{Body: mappers.ToChatSessionResponse(session, session.ID)}, nil
}
