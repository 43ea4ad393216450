package chat

type SendMessageDTO struct {
	ToUserID string `json:"to_user_id" validate:"required"`
	Message  string `json:"message" validate:"required"`
}

type ContactsResponse struct {
	Users []*Contact `json:"users"`
}

type ThreadResponse struct {
	Messages []*Message `json:"messages"`
}

type ConversationsResponse struct {
	Conversations []*Conversation `json:"conversations"`
}

type SendMessageResponse struct {
	Message     string   `json:"message"`
	ChatMessage *Message `json:"chat_message"`
	Success     bool     `json:"success"`
}
