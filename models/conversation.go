package models

import (
	"strings"
	"time"
)

// Message is one entry in a conversation thread. Messages are immutable
// once appended; sender and receiver keep their original casing for display.
type Message struct {
	Sender     string    `json:"sender"`
	Receiver   string    `json:"receiver"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Attachment []string  `json:"attachment"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Conversation is the aggregate thread between a fixed participant pair.
// Participants are stored lowercased; the ID is derived once at creation
// and never changes. Messages are append-only in chronological order.
type Conversation struct {
	ConversationID string    `json:"conversationId"`
	Participants   []string  `json:"participants"`
	Messages       []Message `json:"messages"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// HasParticipant reports membership with case-insensitive matching.
func (c *Conversation) HasParticipant(email string) bool {
	for _, p := range c.Participants {
		if strings.EqualFold(p, email) {
			return true
		}
	}
	return false
}

// LastMessage returns the most recent entry, or nil for an empty thread.
// A stored conversation always has at least one message.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// OriginalSubject is the subject of the first message in the thread.
func (c *Conversation) OriginalSubject() string {
	if len(c.Messages) == 0 {
		return ""
	}
	return c.Messages[0].Subject
}
