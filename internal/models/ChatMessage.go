package models

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAI     Role = "ai"
)

const (
	MessageTypeText  = "text"
	MessageTypeError = "error"
)

// ChatMessage is one normalized transcript line. Timestamp is nil when the
// backend record carried none.
type ChatMessage struct {
	Content     string  `json:"content"`
	Timestamp   *string `json:"timestamp"`
	Role        Role    `json:"role"`
	MessageType string  `json:"messageType"`
}
