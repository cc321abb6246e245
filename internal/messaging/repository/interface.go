package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is what the messaging service needs from persistence.
type Store interface {
	ProfileIsActive(ctx context.Context, id uuid.UUID) (bool, error)
	CreateDirect(ctx context.Context, senderID, recipientID uuid.UUID, body string) (DirectMessage, error)
	ListDirect(ctx context.Context, userID uuid.UUID, box Box, limit int) ([]DirectMessage, error)
	MarkDirectRead(ctx context.Context, id, recipientID uuid.UUID, now time.Time) error
	DeleteDirect(ctx context.Context, id, recipientID uuid.UUID, now time.Time) error
	CreateBroadcast(ctx context.Context, senderID uuid.UUID, title, body string) (Broadcast, error)
	ListBroadcasts(ctx context.Context, userID uuid.UUID, limit int) ([]Broadcast, error)
	BroadcastSender(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	MarkBroadcastRead(ctx context.Context, id, userID uuid.UUID, now time.Time) error
	HideBroadcast(ctx context.Context, id, userID uuid.UUID, now time.Time) error
	DeleteBroadcast(ctx context.Context, id uuid.UUID, now time.Time) error
	UnreadCounts(ctx context.Context, userID uuid.UUID) (direct, broadcast int, err error)
}

var _ Store = (*Repository)(nil)
