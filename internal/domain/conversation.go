package domain

import (
	"fmt"
	"time"
)

// MessageRole identifies who authored a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message is a single turn in a conversation.
type Message struct {
	Role      MessageRole    `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Conversation is an ordered message history owned by a single user. It is
// created on the first turn, appended to thereafter, never merged or split.
type Conversation struct {
	ID        string
	OwnerID   string
	Title     string
	Messages  []Message
	IsAgentic bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// conversationTitleMax bounds how much of the first message becomes the title.
const conversationTitleMax = 50

// NewConversation creates a conversation titled from the first user message.
func NewConversation(id, ownerID, firstMessage string, createdAt time.Time) *Conversation {
	return &Conversation{
		ID:        id,
		OwnerID:   ownerID,
		Title:     TitleFromMessage(firstMessage),
		Messages:  nil,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// TitleFromMessage derives a conversation title from the opening message.
func TitleFromMessage(message string) string {
	runes := []rune(message)
	if len(runes) <= conversationTitleMax {
		return message
	}
	return string(runes[:conversationTitleMax]) + "..."
}

// LastTurns returns up to n trailing messages, preserving order.
func (c *Conversation) LastTurns(n int) []Message {
	if n <= 0 || len(c.Messages) == 0 {
		return nil
	}
	if len(c.Messages) <= n {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-n:]
}

// ValidateConversation validates a Conversation instance.
func ValidateConversation(c *Conversation) error {
	if c == nil {
		return fmt.Errorf("conversation cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("conversation ID is required")
	}

	if c.OwnerID == "" {
		return fmt.Errorf("conversation OwnerID is required")
	}

	for i, m := range c.Messages {
		if !isValidMessageRole(m.Role) {
			return fmt.Errorf("message %d has invalid role: %s", i, m.Role)
		}
		if m.Content == "" {
			return fmt.Errorf("message %d has empty content", i)
		}
	}

	return nil
}

// isValidMessageRole checks if a MessageRole is valid.
func isValidMessageRole(r MessageRole) bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}
