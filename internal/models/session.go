package models

// ChatSession is the per-user assistant identity. It ties the local
// user to the conversation created on the assistant side.
type ChatSession struct {
	UserID         string `json:"userId"`
	UserKey        string `json:"userKey"`
	ConversationID string `json:"conversationId"`
}

// IsComplete reports whether the session can be resumed without
// creating a new conversation.
func (s *ChatSession) IsComplete() bool {
	return s.UserID != "" && s.UserKey != "" && s.ConversationID != ""
}
