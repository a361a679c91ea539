package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"legal-aid/internal/repository"
)

var ErrConversationNotFound = errors.New("conversation not found")

// RoomAccess autoriza las uniones a salas websocket.
type RoomAccess struct {
	conversations repository.ConversationRepository
	participants  *ParticipantResolver
}

func NewRoomAccess(conversations repository.ConversationRepository, participants *ParticipantResolver) *RoomAccess {
	return &RoomAccess{conversations: conversations, participants: participants}
}

// CanJoinUserRoom solo permite la sala personal propia.
func (a *RoomAccess) CanJoinUserRoom(_ context.Context, userID, roomUserID string) error {
	if userID == "" || userID != roomUserID {
		return ErrNotAuthorized
	}
	return nil
}

// CanJoinConversation resuelve los participantes actuales del caso, no la lista sembrada
// al crear la conversación, para incluir a un paralegal asignado después.
func (a *RoomAccess) CanJoinConversation(ctx context.Context, userID, conversationID string) error {
	conv, err := a.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrConversationNotFound
		}
		return fmt.Errorf("%w: get conversation: %w", ErrPersistence, err)
	}
	set, err := a.participants.Resolve(ctx, conv.IssueID)
	if err != nil {
		return err
	}
	if !set.Contains(userID) {
		return ErrNotAuthorized
	}
	return nil
}
