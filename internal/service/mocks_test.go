package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"legal-aid/internal/domain"
)

type fakeIssueRepo struct {
	mu        sync.Mutex
	issues    map[string]domain.LegalIssue
	getErr    error
	updateErr error
}

func newFakeIssueRepo(issues ...domain.LegalIssue) *fakeIssueRepo {
	r := &fakeIssueRepo{issues: make(map[string]domain.LegalIssue)}
	for _, i := range issues {
		r.issues[i.ID] = i
	}
	return r
}

func (r *fakeIssueRepo) Create(_ context.Context, issue domain.LegalIssue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issues[issue.ID] = issue
	return nil
}

func (r *fakeIssueRepo) GetByID(_ context.Context, id string) (domain.LegalIssue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return domain.LegalIssue{}, r.getErr
	}
	issue, ok := r.issues[id]
	if !ok {
		return domain.LegalIssue{}, pgx.ErrNoRows
	}
	return issue, nil
}

func (r *fakeIssueRepo) ListForUser(_ context.Context, userID string) ([]domain.LegalIssue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.LegalIssue
	for _, issue := range r.issues {
		if issue.IsDeleted {
			continue
		}
		if issue.OwnerID == userID || (issue.AssignedParalegalID != nil && *issue.AssignedParalegalID == userID) {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (r *fakeIssueRepo) mutate(id string, fn func(*domain.LegalIssue)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	issue, ok := r.issues[id]
	if !ok || issue.IsDeleted {
		return pgx.ErrNoRows
	}
	fn(&issue)
	r.issues[id] = issue
	return nil
}

func (r *fakeIssueRepo) UpdateStatus(_ context.Context, id string, status domain.IssueStatus, event domain.HistoryEvent) error {
	return r.mutate(id, func(i *domain.LegalIssue) {
		i.Status = status
		i.History = append(i.History, event)
	})
}

func (r *fakeIssueRepo) AssignParalegal(_ context.Context, id, paralegalID string, event domain.HistoryEvent) error {
	return r.mutate(id, func(i *domain.LegalIssue) {
		i.AssignedParalegalID = &paralegalID
		i.History = append(i.History, event)
	})
}

func (r *fakeIssueRepo) AppendHistory(_ context.Context, id string, event domain.HistoryEvent) error {
	return r.mutate(id, func(i *domain.LegalIssue) {
		i.History = append(i.History, event)
	})
}

func (r *fakeIssueRepo) AttachDocument(_ context.Context, id, documentID string, event domain.HistoryEvent) error {
	return r.mutate(id, func(i *domain.LegalIssue) {
		i.DocumentIDs = append(i.DocumentIDs, documentID)
		i.History = append(i.History, event)
	})
}

func (r *fakeIssueRepo) SoftDelete(_ context.Context, id string) error {
	return r.mutate(id, func(i *domain.LegalIssue) {
		i.IsDeleted = true
	})
}

type fakeUserRepo struct {
	users map[string]domain.User
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

type fakeConversationRepo struct {
	mu            sync.Mutex
	byID          map[string]domain.Conversation
	byIssue       map[string]string
	findErr       error
	updateLastErr error
	created       int
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		byID:    make(map[string]domain.Conversation),
		byIssue: make(map[string]string),
	}
}

func (r *fakeConversationRepo) GetByID(_ context.Context, id string) (domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.byID[id]
	if !ok {
		return domain.Conversation{}, pgx.ErrNoRows
	}
	return conv, nil
}

func (r *fakeConversationRepo) GetByIssueID(_ context.Context, issueID string) (domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byIssue[issueID]
	if !ok {
		return domain.Conversation{}, pgx.ErrNoRows
	}
	return r.byID[id], nil
}

func (r *fakeConversationRepo) FindOrCreate(_ context.Context, conv domain.Conversation) (domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return domain.Conversation{}, r.findErr
	}
	if id, ok := r.byIssue[conv.IssueID]; ok {
		return r.byID[id], nil
	}
	r.byID[conv.ID] = conv
	r.byIssue[conv.IssueID] = conv.ID
	r.created++
	return conv, nil
}

func (r *fakeConversationRepo) UpdateLastMessage(_ context.Context, id, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateLastErr != nil {
		return r.updateLastErr
	}
	conv, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	conv.LastMessageID = &messageID
	r.byID[id] = conv
	return nil
}

func (r *fakeConversationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created
}

type fakeMessageRepo struct {
	mu        sync.Mutex
	users     *fakeUserRepo
	messages  map[string]domain.Message
	createErr error
}

func newFakeMessageRepo(users *fakeUserRepo) *fakeMessageRepo {
	return &fakeMessageRepo{users: users, messages: make(map[string]domain.Message)}
}

func (r *fakeMessageRepo) Create(_ context.Context, message domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.messages[message.ID] = message
	return nil
}

func (r *fakeMessageRepo) withSender(m domain.Message) domain.Message {
	if u, ok := r.users.users[m.SenderID]; ok {
		m.Sender = &domain.MessageSender{ID: u.ID, FullName: u.FullName, ProfilePictureURL: u.ProfilePictureURL}
	}
	return m
}

func (r *fakeMessageRepo) GetWithSender(_ context.Context, id string) (domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return domain.Message{}, pgx.ErrNoRows
	}
	return r.withSender(m), nil
}

func (r *fakeMessageRepo) ListByConversation(_ context.Context, conversationID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, r.withSender(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type fakeNotificationRepo struct {
	mu        sync.Mutex
	created   []domain.Notification
	failFor   map[string]error
	listLimit int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{failFor: make(map[string]error)}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failFor[n.RecipientID]; err != nil {
		return err
	}
	r.created = append(r.created, n)
	return nil
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listLimit = limit
	var out []domain.Notification
	for _, n := range r.created {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.IsRead() {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, recipientID string, readAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.created {
		if n.ID == id && n.RecipientID == recipientID {
			if r.created[i].ReadAt == nil {
				r.created[i].ReadAt = &readAt
			}
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeNotificationRepo) snapshot() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notification(nil), r.created...)
}

type publishedMessage struct {
	conversationID string
	message        domain.Message
}

type recordingPublisher struct {
	mu            sync.Mutex
	messages      []publishedMessage
	notifications []domain.Notification
}

func (p *recordingPublisher) PublishMessage(conversationID string, message domain.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, publishedMessage{conversationID: conversationID, message: message})
}

func (p *recordingPublisher) PublishNotification(_ string, n domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, n)
}
