package realtime

import (
	"sync"

	"legal-aid/internal/domain"
)

// Bus es el punto de publicación en proceso entre persistencia y entrega.
//
// Publicar es síncrono y fire-and-forget: los suscriptores corren en la goroutine del
// publicador y, sin suscriptores, el evento se descarta en silencio.
type Bus struct {
	mu             sync.RWMutex
	onMessage      []func(MessageDelivered)
	onNotification []func(NotificationDelivered)
}

func NewBus() *Bus {
	return &Bus{}
}

// OnMessage registra un suscriptor de message-delivered.
func (b *Bus) OnMessage(fn func(MessageDelivered)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onMessage = append(b.onMessage, fn)
}

// OnNotification registra un suscriptor de notification-delivered.
func (b *Bus) OnNotification(fn func(NotificationDelivered)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onNotification = append(b.onNotification, fn)
}

func (b *Bus) PublishMessage(conversationID string, message domain.Message) {
	b.mu.RLock()
	subs := b.onMessage
	b.mu.RUnlock()

	evt := MessageDelivered{ConversationID: conversationID, Message: message}
	for _, fn := range subs {
		fn(evt)
	}
}

func (b *Bus) PublishNotification(recipientID string, notification domain.Notification) {
	b.mu.RLock()
	subs := b.onNotification
	b.mu.RUnlock()

	evt := NotificationDelivered{RecipientID: recipientID, Notification: notification}
	for _, fn := range subs {
		fn(evt)
	}
}
