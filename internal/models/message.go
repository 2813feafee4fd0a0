package models

import "time"

// Message is a single chat message in an assistant conversation.
type Message struct {
	ID             string                 `json:"id"`
	ConversationID string                 `json:"conversationId"`
	UserID         string                 `json:"userId"`
	Text           string                 `json:"text"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
}

// IsFrom reports whether the message was authored by the given user.
func (m *Message) IsFrom(userID string) bool {
	return m.UserID == userID
}
