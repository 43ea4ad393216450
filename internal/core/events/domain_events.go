package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeBookingCreated   = "booking.created"
	EventTypeBookingConfirmed = "booking.confirmed"
	EventTypeBookingCancelled = "booking.cancelled"
	EventTypeVisitorCreated   = "visitor.created"
	EventTypeVisitorApproved  = "visitor.approved"
	EventTypeVisitorRejected  = "visitor.rejected"
	EventTypeChatMessageSent  = "chat.message.sent"
)

// DomainEventTypes lists every type the services publish.
var DomainEventTypes = []string{
	EventTypeBookingCreated,
	EventTypeBookingConfirmed,
	EventTypeBookingCancelled,
	EventTypeVisitorCreated,
	EventTypeVisitorApproved,
	EventTypeVisitorRejected,
	EventTypeChatMessageSent,
}

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

type BookingEvent struct {
	BaseEvent
	BookingID   string `json:"booking_id"`
	UserID      string `json:"user_id"`
	SpaceName   string `json:"space_name"`
	BookingDate string `json:"booking_date"`
	Status      string `json:"status"`
}

func NewBookingEvent(eventType, bookingID, userID, spaceName, bookingDate, status string) *BookingEvent {
	return &BookingEvent{
		BaseEvent: newBase(eventType, map[string]interface{}{
			"booking_id":   bookingID,
			"user_id":      userID,
			"space_name":   spaceName,
			"booking_date": bookingDate,
			"status":       status,
		}),
		BookingID:   bookingID,
		UserID:      userID,
		SpaceName:   spaceName,
		BookingDate: bookingDate,
		Status:      status,
	}
}

type VisitorEvent struct {
	BaseEvent
	VisitorID   string `json:"visitor_id"`
	RequesterID string `json:"requester_id"`
	VisitorName string `json:"visitor_name"`
	Status      string `json:"status"`
}

func NewVisitorEvent(eventType, visitorID, requesterID, visitorName, status string) *VisitorEvent {
	return &VisitorEvent{
		BaseEvent: newBase(eventType, map[string]interface{}{
			"visitor_id":   visitorID,
			"requester_id": requesterID,
			"visitor_name": visitorName,
			"status":       status,
		}),
		VisitorID:   visitorID,
		RequesterID: requesterID,
		VisitorName: visitorName,
		Status:      status,
	}
}

type ChatMessageSentEvent struct {
	BaseEvent
	MessageID  string    `json:"id"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewChatMessageSentEvent(messageID, fromUserID, toUserID, message string, createdAt time.Time) *ChatMessageSentEvent {
	return &ChatMessageSentEvent{
		BaseEvent: newBase(EventTypeChatMessageSent, map[string]interface{}{
			"id":           messageID,
			"from_user_id": fromUserID,
			"to_user_id":   toUserID,
		}),
		MessageID:  messageID,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Message:    message,
		CreatedAt:  createdAt,
	}
}
