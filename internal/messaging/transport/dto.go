package transport

import (
	"time"

	"leaddesk_backend/internal/messaging/repository"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	RecipientID uuid.UUID `json:"recipientId" validate:"required"`
	Body        string    `json:"body" validate:"required,max=4000"`
}

type ListMessagesRequest struct {
	Box string `form:"box" validate:"omitempty,oneof=inbox sent"`
}

type BroadcastRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"required,max=4000"`
}

type MessageResponse struct {
	ID            uuid.UUID  `json:"id"`
	SenderID      uuid.UUID  `json:"senderId"`
	SenderName    string     `json:"senderName"`
	RecipientID   uuid.UUID  `json:"recipientId"`
	RecipientName string     `json:"recipientName"`
	Body          string     `json:"body"`
	ReadAt        *time.Time `json:"readAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type BroadcastResponse struct {
	ID         uuid.UUID  `json:"id"`
	SenderID   uuid.UUID  `json:"senderId"`
	SenderName string     `json:"senderName"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	ReadAt     *time.Time `json:"readAt"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type DeleteBroadcastResponse struct {
	Deleted bool `json:"deleted"`
	Hidden  bool `json:"hidden"`
}

func ToMessageResponse(m repository.DirectMessage) MessageResponse {
	return MessageResponse{
		ID:            m.ID,
		SenderID:      m.SenderID,
		SenderName:    m.SenderName,
		RecipientID:   m.RecipientID,
		RecipientName: m.RecipientName,
		Body:          m.Body,
		ReadAt:        m.ReadAt,
		CreatedAt:     m.CreatedAt,
	}
}

func ToBroadcastResponse(b repository.Broadcast) BroadcastResponse {
	return BroadcastResponse{
		ID:         b.ID,
		SenderID:   b.SenderID,
		SenderName: b.SenderName,
		Title:      b.Title,
		Body:       b.Body,
		ReadAt:     b.ReadAt,
		CreatedAt:  b.CreatedAt,
	}
}
