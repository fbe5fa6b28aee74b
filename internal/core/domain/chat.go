package domain

import "time"

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type ChatSession struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

type Message struct {
	ID        int64       `json:"id"`
	SessionID string      `json:"sessionId"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Sources   []int64     `json:"sources,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

type ChatReply struct {
	Answer    string    `json:"response"`
	Sources   []Source  `json:"sources"`
	SessionID string    `json:"sessionId"`
	Timestamp time.Time `json:"timestamp"`
}
