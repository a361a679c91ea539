package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"legal-aid/internal/domain"
)

type ConversationRepository interface {
	GetByID(ctx context.Context, id string) (domain.Conversation, error)
	GetByIssueID(ctx context.Context, issueID string) (domain.Conversation, error)
	// FindOrCreate devuelve la conversación existente del caso o inserta conv.
	FindOrCreate(ctx context.Context, conv domain.Conversation) (domain.Conversation, error)
	UpdateLastMessage(ctx context.Context, id, messageID string) error
}

type PgConversationRepository struct {
	pool *pgxpool.Pool
}

func NewPgConversationRepository(pool *pgxpool.Pool) *PgConversationRepository {
	return &PgConversationRepository{pool: pool}
}

const conversationColumns = `id, issue_id, participants, last_message_id, created_at, updated_at`

func (r *PgConversationRepository) GetByID(ctx context.Context, id string) (domain.Conversation, error) {
	const query = `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	return scanConversation(r.pool.QueryRow(ctx, query, id))
}

func (r *PgConversationRepository) GetByIssueID(ctx context.Context, issueID string) (domain.Conversation, error) {
	const query = `SELECT ` + conversationColumns + ` FROM conversations WHERE issue_id = $1`
	return scanConversation(r.pool.QueryRow(ctx, query, issueID))
}

func (r *PgConversationRepository) FindOrCreate(ctx context.Context, conv domain.Conversation) (domain.Conversation, error) {
	// El UPDATE no-op hace que RETURNING devuelva la fila ganadora ante inserciones concurrentes.
	const query = `
		INSERT INTO conversations (id, issue_id, participants, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (issue_id) DO UPDATE SET issue_id = EXCLUDED.issue_id
		RETURNING ` + conversationColumns
	participants := conv.Participants
	if participants == nil {
		participants = []string{}
	}
	return scanConversation(r.pool.QueryRow(ctx, query,
		conv.ID,
		conv.IssueID,
		participants,
		conv.CreatedAt,
		conv.UpdatedAt,
	))
}

func (r *PgConversationRepository) UpdateLastMessage(ctx context.Context, id, messageID string) error {
	const query = `
		UPDATE conversations
		SET last_message_id = $2, updated_at = now()
		WHERE id = $1
	`
	return execOne(ctx, r.pool, query, id, messageID)
}

func scanConversation(row pgx.Row) (domain.Conversation, error) {
	var conv domain.Conversation
	err := row.Scan(
		&conv.ID,
		&conv.IssueID,
		&conv.Participants,
		&conv.LastMessageID,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err != nil {
		return domain.Conversation{}, normalizeErr(err)
	}
	return conv, nil
}
