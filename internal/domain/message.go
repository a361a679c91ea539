package domain

import "time"

// MessageSender son los campos mínimos del remitente que se adjuntan al leer.
type MessageSender struct {
	ID                string `json:"id"`
	FullName          string `json:"full_name"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

type Message struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	SenderID       string         `json:"sender_id"`
	Content        string         `json:"content"`
	CreatedAt      time.Time      `json:"created_at"`
	Sender         *MessageSender `json:"sender,omitempty"`
}
