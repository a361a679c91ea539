package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"legal-aid/internal/domain"
)

// IssueRepository persiste casos legales. Las mutaciones agregan al historial en la
// misma sentencia para apoyarse en la atomicidad de una sola fila.
type IssueRepository interface {
	Create(ctx context.Context, issue domain.LegalIssue) error
	GetByID(ctx context.Context, id string) (domain.LegalIssue, error)
	ListForUser(ctx context.Context, userID string) ([]domain.LegalIssue, error)
	UpdateStatus(ctx context.Context, id string, status domain.IssueStatus, event domain.HistoryEvent) error
	AssignParalegal(ctx context.Context, id, paralegalID string, event domain.HistoryEvent) error
	AppendHistory(ctx context.Context, id string, event domain.HistoryEvent) error
	AttachDocument(ctx context.Context, id, documentID string, event domain.HistoryEvent) error
	SoftDelete(ctx context.Context, id string) error
}

type PgIssueRepository struct {
	pool *pgxpool.Pool
}

func NewPgIssueRepository(pool *pgxpool.Pool) *PgIssueRepository {
	return &PgIssueRepository{pool: pool}
}

const issueColumns = `id, owner_id, assigned_paralegal_id, issue_type, description, status, history, document_ids, is_deleted, created_at, updated_at`

func (r *PgIssueRepository) Create(ctx context.Context, issue domain.LegalIssue) error {
	history, err := json.Marshal(issue.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	documentIDs := issue.DocumentIDs
	if documentIDs == nil {
		documentIDs = []string{}
	}

	const query = `
		INSERT INTO legal_issues (` + issueColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.pool.Exec(ctx, query,
		issue.ID,
		issue.OwnerID,
		issue.AssignedParalegalID,
		issue.IssueType,
		issue.Description,
		issue.Status,
		history,
		documentIDs,
		issue.IsDeleted,
		issue.CreatedAt,
		issue.UpdatedAt,
	)
	return err
}

func (r *PgIssueRepository) GetByID(ctx context.Context, id string) (domain.LegalIssue, error) {
	const query = `SELECT ` + issueColumns + ` FROM legal_issues WHERE id = $1`
	issue, err := scanIssue(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return domain.LegalIssue{}, normalizeErr(err)
	}
	return issue, nil
}

func (r *PgIssueRepository) ListForUser(ctx context.Context, userID string) ([]domain.LegalIssue, error) {
	const query = `
		SELECT ` + issueColumns + `
		FROM legal_issues
		WHERE (owner_id = $1 OR assigned_paralegal_id = $1) AND NOT is_deleted
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	issues := []domain.LegalIssue{}
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *PgIssueRepository) UpdateStatus(ctx context.Context, id string, status domain.IssueStatus, event domain.HistoryEvent) error {
	entry, err := historyEntry(event)
	if err != nil {
		return err
	}
	const query = `
		UPDATE legal_issues
		SET status = $2, history = history || $3::jsonb, updated_at = now()
		WHERE id = $1 AND NOT is_deleted
	`
	return execOne(ctx, r.pool, query, id, status, entry)
}

func (r *PgIssueRepository) AssignParalegal(ctx context.Context, id, paralegalID string, event domain.HistoryEvent) error {
	entry, err := historyEntry(event)
	if err != nil {
		return err
	}
	const query = `
		UPDATE legal_issues
		SET assigned_paralegal_id = $2, history = history || $3::jsonb, updated_at = now()
		WHERE id = $1 AND NOT is_deleted
	`
	return execOne(ctx, r.pool, query, id, paralegalID, entry)
}

func (r *PgIssueRepository) AppendHistory(ctx context.Context, id string, event domain.HistoryEvent) error {
	entry, err := historyEntry(event)
	if err != nil {
		return err
	}
	const query = `
		UPDATE legal_issues
		SET history = history || $2::jsonb, updated_at = now()
		WHERE id = $1 AND NOT is_deleted
	`
	return execOne(ctx, r.pool, query, id, entry)
}

func (r *PgIssueRepository) AttachDocument(ctx context.Context, id, documentID string, event domain.HistoryEvent) error {
	entry, err := historyEntry(event)
	if err != nil {
		return err
	}
	const query = `
		UPDATE legal_issues
		SET document_ids = array_append(document_ids, $2::uuid), history = history || $3::jsonb, updated_at = now()
		WHERE id = $1 AND NOT is_deleted
	`
	return execOne(ctx, r.pool, query, id, documentID, entry)
}

func (r *PgIssueRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `
		UPDATE legal_issues
		SET is_deleted = true, updated_at = now()
		WHERE id = $1 AND NOT is_deleted
	`
	return execOne(ctx, r.pool, query, id)
}

func scanIssue(row pgx.Row) (domain.LegalIssue, error) {
	var (
		issue   domain.LegalIssue
		history []byte
	)
	err := row.Scan(
		&issue.ID,
		&issue.OwnerID,
		&issue.AssignedParalegalID,
		&issue.IssueType,
		&issue.Description,
		&issue.Status,
		&history,
		&issue.DocumentIDs,
		&issue.IsDeleted,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	)
	if err != nil {
		return domain.LegalIssue{}, err
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &issue.History); err != nil {
			return domain.LegalIssue{}, fmt.Errorf("unmarshal history: %w", err)
		}
	}
	return issue, nil
}

func historyEntry(event domain.HistoryEvent) ([]byte, error) {
	b, err := json.Marshal([]domain.HistoryEvent{event})
	if err != nil {
		return nil, fmt.Errorf("marshal history event: %w", err)
	}
	return b, nil
}

// execOne devuelve pgx.ErrNoRows cuando la sentencia no afectó ninguna fila.
func execOne(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) error {
	tag, err := pool.Exec(ctx, query, args...)
	if err != nil {
		return normalizeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
