// ABOUTME: Request DTOs for chat and selector settings endpoints
// ABOUTME: Settings fields left empty keep their current value

package requests

// SendMessageRequest posts a message to the current chat session
type SendMessageRequest struct {
	Message string `json:"message" minLength:"1" doc:"Message text"`
}

// SwitchSessionRequest makes a session current
type SwitchSessionRequest struct {
	ID string `json:"id" minLength:"1" doc:"Session id"`
}

// SelectorSettingsRequest overrides capture selectors
type SelectorSettingsRequest struct {
	Article string `json:"article,omitempty" doc:"Article container selector"`
	Title   string `json:"title,omitempty" doc:"Title selector"`
	Content string `json:"content,omitempty" doc:"Content paragraph selector"`
	Images  string `json:"images,omitempty" doc:"Image selector"`
}
