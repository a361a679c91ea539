package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"legal-aid/internal/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, recipientID string, readAt time.Time) error
}

type PgNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewPgNotificationRepository(pool *pgxpool.Pool) *PgNotificationRepository {
	return &PgNotificationRepository{pool: pool}
}

func (r *PgNotificationRepository) Create(ctx context.Context, n domain.Notification) error {
	const query = `
		INSERT INTO notifications (id, recipient_id, sender_id, type, message, link, read_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var senderID interface{}
	if n.SenderID != "" {
		senderID = n.SenderID
	}

	_, err := r.pool.Exec(ctx, query,
		n.ID,
		n.RecipientID,
		senderID,
		n.Type,
		n.Message,
		n.Link,
		n.ReadAt,
		n.CreatedAt,
	)
	return err
}

func (r *PgNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	const query = `
		SELECT id, recipient_id, sender_id, type, message, link, read_at, created_at
		FROM notifications
		WHERE recipient_id = $1 AND ($2 = false OR read_at IS NULL)
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, recipientID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Notification{}
	for rows.Next() {
		var (
			n        domain.Notification
			senderID *string
		)
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&senderID,
			&n.Type,
			&n.Message,
			&n.Link,
			&n.ReadAt,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		if senderID != nil {
			n.SenderID = *senderID
		}
		out = append(out, n)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PgNotificationRepository) MarkRead(ctx context.Context, id, recipientID string, readAt time.Time) error {
	const query = `
		UPDATE notifications
		SET read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND recipient_id = $2
	`
	return execOne(ctx, r.pool, query, id, recipientID, readAt)
}
