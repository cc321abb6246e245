package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// DirectMessage is a one-to-one message with the sender's name resolved.
type DirectMessage struct {
	ID            uuid.UUID
	SenderID      uuid.UUID
	SenderName    string
	RecipientID   uuid.UUID
	RecipientName string
	Body          string
	ReadAt        *time.Time
	CreatedAt     time.Time
}

// Broadcast is a team-wide message as seen by one reader.
type Broadcast struct {
	ID         uuid.UUID
	SenderID   uuid.UUID
	SenderName string
	Title      string
	Body       string
	ReadAt     *time.Time
	CreatedAt  time.Time
}

// Box selects which side of a conversation to list.
type Box string

const (
	BoxInbox Box = "inbox"
	BoxSent  Box = "sent"
)

func (r *Repository) ProfileIsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	var active bool
	err := r.pool.QueryRow(ctx, `SELECT is_active FROM profiles WHERE id = $1`, id).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return active, err
}

func (r *Repository) CreateDirect(ctx context.Context, senderID, recipientID uuid.UUID, body string) (DirectMessage, error) {
	var m DirectMessage
	err := r.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO direct_messages (sender_id, recipient_id, body)
			VALUES ($1, $2, $3)
			RETURNING id, sender_id, recipient_id, body, read_at, created_at
		)
		SELECT i.id, i.sender_id, s.full_name, i.recipient_id, rc.full_name, i.body, i.read_at, i.created_at
		FROM inserted i
		JOIN profiles s ON s.id = i.sender_id
		JOIN profiles rc ON rc.id = i.recipient_id`,
		senderID, recipientID, body,
	).Scan(&m.ID, &m.SenderID, &m.SenderName, &m.RecipientID, &m.RecipientName, &m.Body, &m.ReadAt, &m.CreatedAt)
	return m, err
}

// ListDirect returns the newest messages first. Messages the recipient
// deleted stay visible in the sender's sent box.
func (r *Repository) ListDirect(ctx context.Context, userID uuid.UUID, box Box, limit int) ([]DirectMessage, error) {
	filter := `m.recipient_id = $1 AND m.deleted_at IS NULL`
	if box == BoxSent {
		filter = `m.sender_id = $1`
	}
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.sender_id, s.full_name, m.recipient_id, rc.full_name, m.body, m.read_at, m.created_at
		FROM direct_messages m
		JOIN profiles s ON s.id = m.sender_id
		JOIN profiles rc ON rc.id = m.recipient_id
		WHERE `+filter+`
		ORDER BY m.created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]DirectMessage, 0)
	for rows.Next() {
		var m DirectMessage
		if err := rows.Scan(&m.ID, &m.SenderID, &m.SenderName, &m.RecipientID, &m.RecipientName, &m.Body, &m.ReadAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkDirectRead sets read_at once. Only the recipient can do this.
func (r *Repository) MarkDirectRead(ctx context.Context, id, recipientID uuid.UUID, now time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE direct_messages SET read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND recipient_id = $2 AND deleted_at IS NULL`, id, recipientID, now)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteDirect(ctx context.Context, id, recipientID uuid.UUID, now time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE direct_messages SET deleted_at = $3
		WHERE id = $1 AND recipient_id = $2 AND deleted_at IS NULL`, id, recipientID, now)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) CreateBroadcast(ctx context.Context, senderID uuid.UUID, title, body string) (Broadcast, error) {
	var b Broadcast
	err := r.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO broadcast_messages (sender_id, title, body)
			VALUES ($1, $2, $3)
			RETURNING id, sender_id, title, body, created_at
		)
		SELECT i.id, i.sender_id, p.full_name, i.title, i.body, i.created_at
		FROM inserted i JOIN profiles p ON p.id = i.sender_id`,
		senderID, title, body,
	).Scan(&b.ID, &b.SenderID, &b.SenderName, &b.Title, &b.Body, &b.CreatedAt)
	return b, err
}

// ListBroadcasts returns live broadcasts the user has not hidden, with the
// user's read marker.
func (r *Repository) ListBroadcasts(ctx context.Context, userID uuid.UUID, limit int) ([]Broadcast, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.sender_id, p.full_name, b.title, b.body, rc.read_at, b.created_at
		FROM broadcast_messages b
		JOIN profiles p ON p.id = b.sender_id
		LEFT JOIN broadcast_receipts rc ON rc.message_id = b.id AND rc.user_id = $1
		WHERE b.deleted_at IS NULL AND rc.hidden_at IS NULL
		ORDER BY b.created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Broadcast, 0)
	for rows.Next() {
		var b Broadcast
		if err := rows.Scan(&b.ID, &b.SenderID, &b.SenderName, &b.Title, &b.Body, &b.ReadAt, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// BroadcastSender returns the sender of a live broadcast.
func (r *Repository) BroadcastSender(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var sender uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT sender_id FROM broadcast_messages WHERE id = $1 AND deleted_at IS NULL`, id).Scan(&sender)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	return sender, err
}

func (r *Repository) MarkBroadcastRead(ctx context.Context, id, userID uuid.UUID, now time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO broadcast_receipts (message_id, user_id, read_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (message_id, user_id) DO UPDATE
		SET read_at = COALESCE(broadcast_receipts.read_at, EXCLUDED.read_at)`, id, userID, now)
	return err
}

func (r *Repository) HideBroadcast(ctx context.Context, id, userID uuid.UUID, now time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO broadcast_receipts (message_id, user_id, read_at, hidden_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (message_id, user_id) DO UPDATE
		SET hidden_at = EXCLUDED.hidden_at,
		    read_at = COALESCE(broadcast_receipts.read_at, EXCLUDED.read_at)`, id, userID, now)
	return err
}

func (r *Repository) DeleteBroadcast(ctx context.Context, id uuid.UUID, now time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE broadcast_messages SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, now)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UnreadCounts counts unread direct messages and unread broadcasts from others.
func (r *Repository) UnreadCounts(ctx context.Context, userID uuid.UUID) (direct, broadcast int, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM direct_messages
			 WHERE recipient_id = $1 AND read_at IS NULL AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM broadcast_messages b
			 LEFT JOIN broadcast_receipts rc ON rc.message_id = b.id AND rc.user_id = $1
			 WHERE b.deleted_at IS NULL AND b.sender_id <> $1
			   AND rc.read_at IS NULL AND rc.hidden_at IS NULL)`, userID,
	).Scan(&direct, &broadcast)
	return direct, broadcast, err
}
