package domain

import "time"

// Conversation es uno-a-uno con un LegalIssue y se crea en el primer mensaje.
type Conversation struct {
	ID            string    `json:"id"`
	IssueID       string    `json:"issue_id"`
	Participants  []string  `json:"participants"`
	LastMessageID *string   `json:"last_message_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
