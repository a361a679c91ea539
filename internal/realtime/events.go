// Package realtime entrega en vivo mensajes y notificaciones a websockets conectados.
//
// La entrega es best-effort: sin cola para destinatarios desconectados, sin reintentos y
// sin orden garantizado entre emisores concurrentes. El registro persistido es la fuente
// de verdad; un cliente que no estaba en la sala lo obtiene leyendo vía HTTP.
package realtime

import (
	"encoding/json"

	"legal-aid/internal/domain"
)

// Eventos del protocolo websocket.
const (
	EventJoinUserRoom     = "join_user_room"
	EventJoinConversation = "join_conversation"
	EventNewMessage       = "new_message"
	EventNewNotification  = "new_notification"
	EventJoined           = "joined"
	EventError            = "error"
)

// Frame es el sobre JSON de cada mensaje websocket entrante.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// OutboundFrame es el sobre de cada mensaje enviado al cliente.
type OutboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type MessageDelivered struct {
	ConversationID string
	Message        domain.Message
}

type NotificationDelivered struct {
	RecipientID  string
	Notification domain.Notification
}

func UserRoom(userID string) string {
	return "user:" + userID
}

func ConversationRoom(conversationID string) string {
	return "conversation:" + conversationID
}
