package domain

// Role is the speaker of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is the provider-agnostic chat message shape sent to the LLM.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatTurn is one prior conversational turn supplied by the client or loaded
// from conversation state. Only user and assistant turns are valid history.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// IsHistoryRole reports whether r may appear in chat history.
func IsHistoryRole(r Role) bool {
	return r == RoleUser || r == RoleAssistant
}
