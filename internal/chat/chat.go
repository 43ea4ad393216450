package chat

import (
	"time"

	"github.com/dcalliari/appe/internal"
)

type Message struct {
	ID         string    `json:"id" db:"id"`
	FromUserID string    `json:"from_user_id" db:"from_user_id"`
	ToUserID   string    `json:"to_user_id" db:"to_user_id"`
	Message    string    `json:"message" db:"message"`
	IsRead     bool      `json:"is_read" db:"is_read"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Contact is a front desk user a resident can write to.
type Contact struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Role      string `json:"role" db:"role"`
	Apartment string `json:"apartment" db:"apartment"`
}

type Conversation struct {
	UserID      string   `json:"user_id"`
	LastMessage *Message `json:"last_message"`
	UnreadCount int      `json:"unread_count"`
}

// SummarizeConversations groups the messages touching userID by the other
// participant. Order follows the first appearance in msgs, so pass them
// newest first to get the most recent conversation on top.
func SummarizeConversations(userID string, msgs []*Message) []*Conversation {
	byPeer := make(map[string]*Conversation)
	out := make([]*Conversation, 0)

	for _, m := range msgs {
		peer := m.FromUserID
		if peer == userID {
			peer = m.ToUserID
		}

		conv, ok := byPeer[peer]
		if !ok {
			conv = &Conversation{UserID: peer, LastMessage: m}
			byPeer[peer] = conv
			out = append(out, conv)
		} else if m.CreatedAt.After(conv.LastMessage.CreatedAt) {
			conv.LastMessage = m
		}

		if m.ToUserID == userID && !m.IsRead {
			conv.UnreadCount++
		}
	}
	return out
}

var (
	ErrInvalidRecipient  = internal.NewValidationError("you cannot send messages to yourself", internal.ErrCodeInvalidRecipient)
	ErrRecipientNotFound = internal.NewNotFoundError("recipient not found", internal.ErrCodeUserNotFound)
	ErrPeerRequired      = internal.NewValidationError("user id is required", internal.ErrCodeValidationFailed)
)
