package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"legal-aid/internal/domain"
	"legal-aid/internal/repository"
)

var (
	ErrNotificationServiceNotConfigured = errors.New("notification service not configured")
	ErrNotificationNotFound             = errors.New("notification not found")
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 100
)

// NotificationService expone la bandeja de notificaciones persistidas.
type NotificationService struct {
	repo repository.NotificationRepository
	now  func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if s == nil || s.repo == nil {
		return nil, ErrNotificationServiceNotConfigured
	}
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	out, err := s.repo.ListByRecipient(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list notifications: %w", ErrPersistence, err)
	}
	if out == nil {
		out = []domain.Notification{}
	}
	return out, nil
}

// MarkRead es idempotente; solo el destinatario puede marcarla.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if s == nil || s.repo == nil {
		return ErrNotificationServiceNotConfigured
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotificationNotFound
	}
	if err := s.repo.MarkRead(ctx, id, userID, s.now()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("%w: mark read: %w", ErrPersistence, err)
	}
	return nil
}
