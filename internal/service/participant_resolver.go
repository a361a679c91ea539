package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"

	"legal-aid/internal/domain"
	"legal-aid/internal/repository"
)

var (
	ErrIssueNotFound = errors.New("issue not found")
	ErrNotAuthorized = errors.New("not a participant of this issue")
	// ErrPersistence envuelve fallos del almacenamiento; nunca se reintenta.
	ErrPersistence = errors.New("persistence failure")
)

// ParticipantSet son los usuarios autorizados a leer y escribir en la conversación de un caso.
type ParticipantSet struct {
	Issue   domain.LegalIssue
	Members []string
}

func (p ParticipantSet) Contains(userID string) bool {
	return userID != "" && lo.Contains(p.Members, userID)
}

// Others devuelve los participantes distintos de userID.
func (p ParticipantSet) Others(userID string) []string {
	return lo.Without(p.Members, userID)
}

// ParticipantResolver deriva el conjunto de participantes de un caso. Es de solo lectura.
type ParticipantResolver struct {
	issues repository.IssueRepository
}

func NewParticipantResolver(issues repository.IssueRepository) *ParticipantResolver {
	return &ParticipantResolver{issues: issues}
}

func (r *ParticipantResolver) Resolve(ctx context.Context, issueID string) (ParticipantSet, error) {
	issue, err := r.issues.GetByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ParticipantSet{}, ErrIssueNotFound
		}
		return ParticipantSet{}, fmt.Errorf("%w: get issue: %w", ErrPersistence, err)
	}
	if issue.IsDeleted {
		return ParticipantSet{}, ErrIssueNotFound
	}
	return ParticipantSet{Issue: issue, Members: issue.Participants()}, nil
}
