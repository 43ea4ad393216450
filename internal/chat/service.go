package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/core/events"
	"github.com/google/uuid"
)

type Repository interface {
	// ListContacts returns admin and doorman users other than excludeID.
	ListContacts(ctx context.Context, excludeID string) ([]*Contact, error)
	UserExists(ctx context.Context, id string) (bool, error)
	Insert(ctx context.Context, m *Message) error
	// Thread returns the messages exchanged between a and b, oldest first.
	Thread(ctx context.Context, a, b string) ([]*Message, error)
	// MarkRead flags the listed messages addressed to recipientID as read.
	MarkRead(ctx context.Context, recipientID string, ids []string) (int64, error)
	// ListForUser returns the messages sent or received by userID, newest first.
	ListForUser(ctx context.Context, userID string) ([]*Message, error)
}

type ServiceAPI interface {
	Contacts(ctx context.Context, id *internal.Identity) ([]*Contact, error)
	Send(ctx context.Context, id *internal.Identity, dto SendMessageDTO) (*Message, error)
	Thread(ctx context.Context, id *internal.Identity, otherUserID string) ([]*Message, error)
	Conversations(ctx context.Context, id *internal.Identity) ([]*Conversation, error)
}

type Service struct {
	repo   Repository
	events events.Publisher
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		events: publisher,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) Contacts(ctx context.Context, id *internal.Identity) ([]*Contact, error) {
	if id == nil {
		return nil, internal.ErrUnauthenticated
	}
	contacts, err := s.repo.ListContacts(ctx, id.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to fetch contacts", err)
	}
	if contacts == nil {
		contacts = []*Contact{}
	}
	return contacts, nil
}

func (s *Service) Send(ctx context.Context, id *internal.Identity, dto SendMessageDTO) (*Message, error) {
	if id == nil {
		return nil, internal.ErrUnauthenticated
	}
	if strings.TrimSpace(dto.Message) == "" {
		return nil, internal.NewValidationFieldError("message", "message is required", internal.ErrCodeValidationFailed)
	}
	if dto.ToUserID == id.UserID {
		return nil, ErrInvalidRecipient
	}

	exists, err := s.repo.UserExists(ctx, dto.ToUserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up recipient", err)
	}
	if !exists {
		return nil, ErrRecipientNotFound
	}

	m := &Message{
		ID:         uuid.NewString(),
		FromUserID: id.UserID,
		ToUserID:   dto.ToUserID,
		Message:    dto.Message,
		IsRead:     false,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return nil, internal.NewInternalError("failed to send message", err)
	}

	s.logger.Info("chat message sent",
		"message_id", m.ID,
		"user_id", m.FromUserID,
		"to_user_id", m.ToUserID)

	if s.events != nil {
		evt := events.NewChatMessageSentEvent(m.ID, m.FromUserID, m.ToUserID, m.Message, m.CreatedAt)
		if err := s.events.Publish(ctx, evt); err != nil {
			s.logger.Warn("failed to publish chat event", "message_id", m.ID, "error", err)
		}
	}
	return m, nil
}

// Thread returns the conversation with otherUserID and marks what the caller
// received in it as read. The returned messages reflect that.
func (s *Service) Thread(ctx context.Context, id *internal.Identity, otherUserID string) ([]*Message, error) {
	if id == nil {
		return nil, internal.ErrUnauthenticated
	}
	if otherUserID == "" {
		return nil, ErrPeerRequired
	}

	msgs, err := s.repo.Thread(ctx, id.UserID, otherUserID)
	if err != nil {
		s.logger.Error("failed to fetch chat thread", "user_id", id.UserID, "other_user_id", otherUserID, "error", err)
		return nil, internal.NewInternalError("failed to fetch messages", err)
	}

	// only messages returned here count as delivered
	var unread []*Message
	for _, m := range msgs {
		if m.ToUserID == id.UserID && m.FromUserID == otherUserID && !m.IsRead {
			unread = append(unread, m)
		}
	}
	if len(unread) > 0 {
		ids := make([]string, len(unread))
		for i, m := range unread {
			ids[i] = m.ID
		}
		marked, err := s.repo.MarkRead(ctx, id.UserID, ids)
		if err != nil {
			s.logger.Error("failed to mark chat thread read", "user_id", id.UserID, "other_user_id", otherUserID, "error", err)
			return nil, internal.NewInternalError("failed to fetch messages", err)
		}
		for _, m := range unread {
			m.IsRead = true
		}
		s.logger.Debug("chat messages marked read", "user_id", id.UserID, "other_user_id", otherUserID, "count", marked)
	}

	if msgs == nil {
		msgs = []*Message{}
	}
	return msgs, nil
}

func (s *Service) Conversations(ctx context.Context, id *internal.Identity) ([]*Conversation, error) {
	if id == nil {
		return nil, internal.ErrUnauthenticated
	}
	msgs, err := s.repo.ListForUser(ctx, id.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to fetch conversations", err)
	}
	return SummarizeConversations(id.UserID, msgs), nil
}
