package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"legal-aid/internal/domain"
	"legal-aid/internal/repository"
)

var (
	ErrIssueServiceNotConfigured = errors.New("issue service not configured")
	ErrInvalidIssueInput         = errors.New("issue invalid input")
	ErrUserNotFound              = errors.New("user not found")
)

const (
	actorUser  = "User"
	actorAdmin = "Admin"
)

// IssueService gestiona el ciclo de vida de los casos legales.
type IssueService struct {
	logger *zap.Logger
	issues repository.IssueRepository
	users  repository.UserRepository
	now    func() time.Time
}

func NewIssueService(logger *zap.Logger, issues repository.IssueRepository, users repository.UserRepository) *IssueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueService{
		logger: logger,
		issues: issues,
		users:  users,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type CreateIssueInput struct {
	OwnerID     string
	IssueType   domain.IssueType
	Description string
}

// Caller es la identidad ya verificada de quien hace la petición.
type Caller struct {
	UserID   string
	FullName string
	Role     domain.Role
}

func (c Caller) IsAdmin() bool { return c.Role == domain.RoleAdmin }

func (s *IssueService) Create(ctx context.Context, in CreateIssueInput) (domain.LegalIssue, error) {
	if s == nil || s.issues == nil {
		return domain.LegalIssue{}, ErrIssueServiceNotConfigured
	}
	ownerID := strings.TrimSpace(in.OwnerID)
	if ownerID == "" || !in.IssueType.Valid() {
		return domain.LegalIssue{}, ErrInvalidIssueInput
	}

	now := s.now()
	issue := domain.LegalIssue{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		IssueType:   in.IssueType,
		Description: strings.TrimSpace(in.Description),
		Status:      domain.IssueStatusPending,
		History: []domain.HistoryEvent{{
			Event:     domain.HistoryIssueCreated,
			Timestamp: now,
			Actor:     actorUser,
		}},
		DocumentIDs: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return domain.LegalIssue{}, fmt.Errorf("%w: create issue: %w", ErrPersistence, err)
	}
	s.logger.Info("issue created", zap.String("issue_id", issue.ID), zap.String("owner_id", ownerID))
	return issue, nil
}

// Get devuelve el caso si el llamante es participante o administrador.
func (s *IssueService) Get(ctx context.Context, issueID string, caller Caller) (domain.LegalIssue, error) {
	issue, err := s.load(ctx, issueID)
	if err != nil {
		return domain.LegalIssue{}, err
	}
	if !caller.IsAdmin() && !lo.Contains(issue.Participants(), caller.UserID) {
		return domain.LegalIssue{}, ErrNotAuthorized
	}
	return issue, nil
}

func (s *IssueService) ListForUser(ctx context.Context, userID string) ([]domain.LegalIssue, error) {
	if s == nil || s.issues == nil {
		return nil, ErrIssueServiceNotConfigured
	}
	issues, err := s.issues.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list issues: %w", ErrPersistence, err)
	}
	return issues, nil
}

// UpdateStatus no valida transiciones: cualquier estado puede seguir a cualquier otro.
func (s *IssueService) UpdateStatus(ctx context.Context, issueID string, status domain.IssueStatus, caller Caller) (domain.LegalIssue, error) {
	if s == nil || s.issues == nil {
		return domain.LegalIssue{}, ErrIssueServiceNotConfigured
	}
	if !status.Valid() {
		return domain.LegalIssue{}, ErrInvalidIssueInput
	}
	if _, err := s.Get(ctx, issueID, caller); err != nil {
		return domain.LegalIssue{}, err
	}
	event := domain.HistoryEvent{
		Event:     domain.HistoryStatusChanged,
		Timestamp: s.now(),
		Details:   "Status changed to " + string(status),
		Actor:     actorFor(caller),
	}
	if err := s.issues.UpdateStatus(ctx, issueID, status, event); err != nil {
		return domain.LegalIssue{}, mapIssueErr("update status", err)
	}
	return s.load(ctx, issueID)
}

// AssignParalegal asigna un usuario con rol paralegal; reasignar reemplaza al anterior.
func (s *IssueService) AssignParalegal(ctx context.Context, issueID, paralegalID string) (domain.LegalIssue, error) {
	if s == nil || s.issues == nil || s.users == nil {
		return domain.LegalIssue{}, ErrIssueServiceNotConfigured
	}
	paralegalID = strings.TrimSpace(paralegalID)
	if paralegalID == "" {
		return domain.LegalIssue{}, ErrInvalidIssueInput
	}
	user, err := s.users.GetByID(ctx, paralegalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LegalIssue{}, ErrUserNotFound
		}
		return domain.LegalIssue{}, fmt.Errorf("%w: get user: %w", ErrPersistence, err)
	}
	if user.Role != domain.RoleParalegal {
		return domain.LegalIssue{}, ErrInvalidIssueInput
	}

	event := domain.HistoryEvent{
		Event:     domain.HistoryAssignedToParalegal,
		Timestamp: s.now(),
		Details:   "Assigned to " + user.FullName,
		Actor:     actorAdmin,
	}
	if err := s.issues.AssignParalegal(ctx, issueID, user.ID, event); err != nil {
		return domain.LegalIssue{}, mapIssueErr("assign paralegal", err)
	}
	s.logger.Info("paralegal assigned", zap.String("issue_id", issueID), zap.String("paralegal_id", user.ID))
	return s.load(ctx, issueID)
}

func (s *IssueService) AddNote(ctx context.Context, issueID, note string, caller Caller) (domain.LegalIssue, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return domain.LegalIssue{}, ErrInvalidIssueInput
	}
	if _, err := s.Get(ctx, issueID, caller); err != nil {
		return domain.LegalIssue{}, err
	}
	event := domain.HistoryEvent{
		Event:     domain.HistoryNoteAdded,
		Timestamp: s.now(),
		Details:   note,
		Actor:     actorFor(caller),
	}
	if err := s.issues.AppendHistory(ctx, issueID, event); err != nil {
		return domain.LegalIssue{}, mapIssueErr("append note", err)
	}
	return s.load(ctx, issueID)
}

// AttachDocument registra la referencia a un documento ya subido; la subida en sí ocurre fuera.
func (s *IssueService) AttachDocument(ctx context.Context, issueID, documentID, documentType string, caller Caller) (domain.LegalIssue, error) {
	documentID = strings.TrimSpace(documentID)
	documentType = strings.TrimSpace(documentType)
	if documentID == "" || documentType == "" {
		return domain.LegalIssue{}, ErrInvalidIssueInput
	}
	if _, err := s.Get(ctx, issueID, caller); err != nil {
		return domain.LegalIssue{}, err
	}
	event := domain.HistoryEvent{
		Event:     domain.HistoryDocumentUploaded,
		Timestamp: s.now(),
		Details:   "Document: " + documentType,
		Actor:     actorUser,
	}
	if err := s.issues.AttachDocument(ctx, issueID, documentID, event); err != nil {
		return domain.LegalIssue{}, mapIssueErr("attach document", err)
	}
	s.logger.Info("document attached", zap.String("issue_id", issueID), zap.String("document_id", documentID))
	return s.load(ctx, issueID)
}

// Delete marca el caso como borrado; solo el dueño o un administrador.
func (s *IssueService) Delete(ctx context.Context, issueID string, caller Caller) error {
	issue, err := s.load(ctx, issueID)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() && issue.OwnerID != caller.UserID {
		return ErrNotAuthorized
	}
	if err := s.issues.SoftDelete(ctx, issue.ID); err != nil {
		return mapIssueErr("soft delete", err)
	}
	s.logger.Info("issue deleted", zap.String("issue_id", issue.ID))
	return nil
}

func (s *IssueService) load(ctx context.Context, issueID string) (domain.LegalIssue, error) {
	if s == nil || s.issues == nil {
		return domain.LegalIssue{}, ErrIssueServiceNotConfigured
	}
	issue, err := s.issues.GetByID(ctx, strings.TrimSpace(issueID))
	if err != nil {
		return domain.LegalIssue{}, mapIssueErr("get issue", err)
	}
	if issue.IsDeleted {
		return domain.LegalIssue{}, ErrIssueNotFound
	}
	return issue, nil
}

func mapIssueErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrIssueNotFound
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

func actorFor(c Caller) string {
	switch c.Role {
	case domain.RoleAdmin:
		return actorAdmin
	case domain.RoleParalegal:
		return "Paralegal"
	case domain.RoleCitizen:
		return actorUser
	}
	return domain.DefaultHistoryActor
}
