// ABOUTME: Chat domain models for side panel conversations
// ABOUTME: Sessions hold ordered, timestamped, role-tagged messages

package domain

// ChatRole tags who authored a message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is a single message in a session. Timestamp is in Unix milliseconds.
type ChatMessage struct {
	ID        string   `json:"id"`
	Role      ChatRole `json:"role"`
	Content   string   `json:"content"`
	Timestamp int64    `json:"timestamp"`
}

// ChatSession is an independently addressable conversation
type ChatSession struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	LastUpdated int64         `json:"lastUpdated"`
	Messages    []ChatMessage `json:"messages"`
}

// Clone returns a deep copy of the session
func (s *ChatSession) Clone() *ChatSession {
	if s == nil {
		return nil
	}
	c := *s
	c.Messages = append([]ChatMessage(nil), s.Messages...)
	if c.Messages == nil {
		c.Messages = []ChatMessage{}
	}
	return &c
}
