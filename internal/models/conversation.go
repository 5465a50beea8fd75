package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type TokenUsage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Message is one turn of a persisted chat. Thinking and Tokens are only
// present for assistant turns that carried them.
type Message struct {
	Role     string      `json:"role"`
	Content  string      `json:"content"`
	Thinking string      `json:"thinking,omitempty"`
	Tokens   *TokenUsage `json:"tokens,omitempty"`
}

// Conversation is a full chat snapshot. Messages are stored as a JSONB blob
// and replaced wholesale on every save; callers always transmit the complete
// history. Deleted is a plain flag, the row itself is retained forever.
type Conversation struct {
	ConversationID string         `gorm:"primaryKey" json:"conversationId"`
	UserID         string         `gorm:"index;not null" json:"userId"`
	Messages       datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"-"`
	ContextEnabled bool           `json:"contextEnabled"`
	MessageCount   int            `json:"messageCount"`
	Deleted        bool           `gorm:"index;default:false" json:"-"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// ConversationSummary is the listing shape: no message bodies.
type ConversationSummary struct {
	ConversationID string    `json:"conversationId"`
	CreatedAt      time.Time `json:"createdAt"`
	MessageCount   int       `json:"messageCount"`
	ContextEnabled bool      `json:"contextEnabled"`
}

func (c *Conversation) Summary() ConversationSummary {
	return ConversationSummary{
		ConversationID: c.ConversationID,
		CreatedAt:      c.CreatedAt,
		MessageCount:   c.MessageCount,
		ContextEnabled: c.ContextEnabled,
	}
}

func EncodeMessages(messages []Message) (datatypes.JSON, error) {
	if messages == nil {
		messages = []Message{}
	}
	b, err := json.Marshal(messages)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// DecodedMessages unpacks the stored blob back into the ordered sequence.
func (c *Conversation) DecodedMessages() ([]Message, error) {
	messages := []Message{}
	if len(c.Messages) == 0 {
		return messages, nil
	}
	if err := json.Unmarshal([]byte(c.Messages), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
