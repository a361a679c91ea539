package http

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"legal-aid/internal/domain"
)

type memIssueRepo struct {
	mu     sync.Mutex
	issues map[string]domain.LegalIssue
}

func (r *memIssueRepo) Create(_ context.Context, issue domain.LegalIssue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issues[issue.ID] = issue
	return nil
}

func (r *memIssueRepo) GetByID(_ context.Context, id string) (domain.LegalIssue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok {
		return domain.LegalIssue{}, pgx.ErrNoRows
	}
	return issue, nil
}

func (r *memIssueRepo) ListForUser(_ context.Context, userID string) ([]domain.LegalIssue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.LegalIssue
	for _, issue := range r.issues {
		if !issue.IsDeleted && issue.OwnerID == userID {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (r *memIssueRepo) update(id string, fn func(*domain.LegalIssue)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok || issue.IsDeleted {
		return pgx.ErrNoRows
	}
	fn(&issue)
	r.issues[id] = issue
	return nil
}

func (r *memIssueRepo) UpdateStatus(_ context.Context, id string, status domain.IssueStatus, event domain.HistoryEvent) error {
	return r.update(id, func(i *domain.LegalIssue) {
		i.Status = status
		i.History = append(i.History, event)
	})
}

func (r *memIssueRepo) AssignParalegal(_ context.Context, id, paralegalID string, event domain.HistoryEvent) error {
	return r.update(id, func(i *domain.LegalIssue) {
		i.AssignedParalegalID = &paralegalID
		i.History = append(i.History, event)
	})
}

func (r *memIssueRepo) AppendHistory(_ context.Context, id string, event domain.HistoryEvent) error {
	return r.update(id, func(i *domain.LegalIssue) { i.History = append(i.History, event) })
}

func (r *memIssueRepo) AttachDocument(_ context.Context, id, documentID string, event domain.HistoryEvent) error {
	return r.update(id, func(i *domain.LegalIssue) {
		i.DocumentIDs = append(i.DocumentIDs, documentID)
		i.History = append(i.History, event)
	})
}

func (r *memIssueRepo) SoftDelete(_ context.Context, id string) error {
	return r.update(id, func(i *domain.LegalIssue) { i.IsDeleted = true })
}

type memUserRepo struct {
	users map[string]domain.User
}

func (r *memUserRepo) Create(_ context.Context, user domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

type memConversationRepo struct {
	mu    sync.Mutex
	convs map[string]domain.Conversation
}

func (r *memConversationRepo) GetByID(_ context.Context, id string) (domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[id]
	if !ok {
		return domain.Conversation{}, pgx.ErrNoRows
	}
	return conv, nil
}

func (r *memConversationRepo) GetByIssueID(_ context.Context, issueID string) (domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conv := range r.convs {
		if conv.IssueID == issueID {
			return conv, nil
		}
	}
	return domain.Conversation{}, pgx.ErrNoRows
}

func (r *memConversationRepo) FindOrCreate(ctx context.Context, conv domain.Conversation) (domain.Conversation, error) {
	if existing, err := r.GetByIssueID(ctx, conv.IssueID); err == nil {
		return existing, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.convs[conv.ID] = conv
	return conv, nil
}

func (r *memConversationRepo) UpdateLastMessage(_ context.Context, id, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[id]
	if !ok {
		return pgx.ErrNoRows
	}
	conv.LastMessageID = &messageID
	r.convs[id] = conv
	return nil
}

type memMessageRepo struct {
	mu       sync.Mutex
	users    *memUserRepo
	messages []domain.Message
}

func (r *memMessageRepo) Create(_ context.Context, message domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

func (r *memMessageRepo) attach(m domain.Message) domain.Message {
	if u, ok := r.users.users[m.SenderID]; ok {
		m.Sender = &domain.MessageSender{ID: u.ID, FullName: u.FullName}
	}
	return m
}

func (r *memMessageRepo) GetWithSender(_ context.Context, id string) (domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			return r.attach(m), nil
		}
	}
	return domain.Message{}, pgx.ErrNoRows
}

func (r *memMessageRepo) ListByConversation(_ context.Context, conversationID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, r.attach(m))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memNotificationRepo struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (r *memNotificationRepo) Create(_ context.Context, n domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
	return nil
}

func (r *memNotificationRepo) ListByRecipient(_ context.Context, recipientID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.items {
		if n.RecipientID == recipientID && (!unreadOnly || !n.IsRead()) {
			out = append(out, n)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, id, recipientID string, readAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.items {
		if n.ID == id && n.RecipientID == recipientID {
			if n.ReadAt == nil {
				r.items[i].ReadAt = &readAt
			}
			return nil
		}
	}
	return pgx.ErrNoRows
}
