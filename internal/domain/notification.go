package domain

import "time"

const NotificationTypeNewMessage = "NEW_MESSAGE"

type Notification struct {
	ID          string     `json:"id"`
	RecipientID string     `json:"recipient_id"`
	SenderID    string     `json:"sender_id,omitempty"`
	Type        string     `json:"type"`
	Message     string     `json:"message"`
	Link        string     `json:"link,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (n Notification) IsRead() bool {
	return n.ReadAt != nil
}
