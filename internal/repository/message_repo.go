package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"legal-aid/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message domain.Message) error
	// GetWithSender devuelve el mensaje con nombre y avatar del remitente.
	GetWithSender(ctx context.Context, id string) (domain.Message, error)
	ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

const messageWithSenderSelect = `
	SELECT m.id, m.conversation_id, m.sender_id, m.content, m.created_at,
	       u.id, u.full_name, u.profile_picture_url
	FROM messages m
	JOIN users u ON u.id = m.sender_id
`

func (r *PgMessageRepository) Create(ctx context.Context, message domain.Message) error {
	const query = `
		INSERT INTO messages (id, conversation_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.ConversationID,
		message.SenderID,
		message.Content,
		message.CreatedAt,
	)
	return err
}

func (r *PgMessageRepository) GetWithSender(ctx context.Context, id string) (domain.Message, error) {
	const query = messageWithSenderSelect + `WHERE m.id = $1`
	return scanMessageWithSender(r.pool.QueryRow(ctx, query, id))
}

func (r *PgMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	const query = messageWithSenderSelect + `
		WHERE m.conversation_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`

	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		msg, err := scanMessageWithSender(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

func scanMessageWithSender(row pgx.Row) (domain.Message, error) {
	var (
		msg    domain.Message
		sender domain.MessageSender
	)
	err := row.Scan(
		&msg.ID,
		&msg.ConversationID,
		&msg.SenderID,
		&msg.Content,
		&msg.CreatedAt,
		&sender.ID,
		&sender.FullName,
		&sender.ProfilePictureURL,
	)
	if err != nil {
		return domain.Message{}, err
	}
	msg.Sender = &sender
	return msg, nil
}
