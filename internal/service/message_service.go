package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"legal-aid/internal/domain"
	"legal-aid/internal/metrics"
	"legal-aid/internal/repository"
)

var (
	ErrMessageServiceNotConfigured = errors.New("message service not configured")
	ErrEmptyContent                = errors.New("message content cannot be empty")
)

// EventPublisher recibe los eventos ya persistidos para su entrega en vivo.
type EventPublisher interface {
	PublishMessage(conversationID string, message domain.Message)
	PublishNotification(recipientID string, notification domain.Notification)
}

type SendMessageInput struct {
	IssueID    string
	SenderID   string
	SenderName string
	Content    string
}

// MessageList es el resultado del camino de lectura; Started es false si aún no hay conversación.
type MessageList struct {
	Messages []domain.Message
	Started  bool
}

// MessageService valida, persiste y publica los mensajes de la conversación de un caso.
type MessageService struct {
	logger        *zap.Logger
	participants  *ParticipantResolver
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	notifications repository.NotificationRepository
	publisher     EventPublisher
	now           func() time.Time
}

func NewMessageService(
	logger *zap.Logger,
	participants *ParticipantResolver,
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	notifications repository.NotificationRepository,
	publisher EventPublisher,
) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageService{
		logger:        logger,
		participants:  participants,
		conversations: conversations,
		messages:      messages,
		notifications: notifications,
		publisher:     publisher,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *MessageService) configured() bool {
	return s != nil && s.participants != nil && s.conversations != nil && s.messages != nil && s.notifications != nil
}

// Send acepta un mensaje de un participante del caso.
//
// Los pasos son secuenciales y sin transacción: si una escritura intermedia falla, las
// anteriores quedan persistidas. Las notificaciones son independientes entre sí.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (domain.Message, error) {
	if !s.configured() {
		return domain.Message{}, ErrMessageServiceNotConfigured
	}
	if strings.TrimSpace(in.Content) == "" {
		return domain.Message{}, ErrEmptyContent
	}

	set, err := s.participants.Resolve(ctx, strings.TrimSpace(in.IssueID))
	if err != nil {
		return domain.Message{}, err
	}
	if !set.Contains(in.SenderID) {
		return domain.Message{}, ErrNotAuthorized
	}

	now := s.now()
	conv, err := s.conversations.FindOrCreate(ctx, domain.Conversation{
		ID:           uuid.NewString(),
		IssueID:      set.Issue.ID,
		Participants: set.Members,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: find or create conversation: %w", ErrPersistence, err)
	}

	msg := domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       in.SenderID,
		Content:        in.Content,
		CreatedAt:      now,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return domain.Message{}, fmt.Errorf("%w: create message: %w", ErrPersistence, err)
	}
	metrics.MessagesSent.Inc()

	if err := s.conversations.UpdateLastMessage(ctx, conv.ID, msg.ID); err != nil {
		return domain.Message{}, fmt.Errorf("%w: update last message: %w", ErrPersistence, err)
	}

	joined, err := s.messages.GetWithSender(ctx, msg.ID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: load message: %w", ErrPersistence, err)
	}

	if s.publisher != nil {
		s.publisher.PublishMessage(conv.ID, joined)
	}

	senderName := strings.TrimSpace(in.SenderName)
	if senderName == "" && joined.Sender != nil {
		senderName = joined.Sender.FullName
	}
	for _, recipientID := range set.Others(in.SenderID) {
		s.notify(ctx, recipientID, in.SenderID, senderName, set.Issue)
	}

	return joined, nil
}

func (s *MessageService) notify(ctx context.Context, recipientID, senderID, senderName string, issue domain.LegalIssue) {
	n := domain.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        domain.NotificationTypeNewMessage,
		Message:     fmt.Sprintf("You have a new message from %s regarding issue: %s", senderName, issue.IssueType),
		Link:        "/issues/" + issue.ID,
		CreatedAt:   s.now(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		metrics.NotificationsCreated.WithLabelValues("failed").Inc()
		s.logger.Warn("create notification failed",
			zap.String("issue_id", issue.ID),
			zap.String("recipient_id", recipientID),
			zap.Error(err),
		)
		return
	}
	metrics.NotificationsCreated.WithLabelValues("created").Inc()

	if s.publisher != nil {
		s.publisher.PublishNotification(recipientID, n)
	}
}

// List devuelve los mensajes del caso en orden ascendente de creación.
func (s *MessageService) List(ctx context.Context, issueID, callerID string) (MessageList, error) {
	if !s.configured() {
		return MessageList{}, ErrMessageServiceNotConfigured
	}

	set, err := s.participants.Resolve(ctx, strings.TrimSpace(issueID))
	if err != nil {
		return MessageList{}, err
	}
	if !set.Contains(callerID) {
		return MessageList{}, ErrNotAuthorized
	}

	conv, err := s.conversations.GetByIssueID(ctx, set.Issue.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MessageList{Messages: []domain.Message{}}, nil
		}
		return MessageList{}, fmt.Errorf("%w: get conversation: %w", ErrPersistence, err)
	}

	messages, err := s.messages.ListByConversation(ctx, conv.ID)
	if err != nil {
		return MessageList{}, fmt.Errorf("%w: list messages: %w", ErrPersistence, err)
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return MessageList{Messages: messages, Started: true}, nil
}
