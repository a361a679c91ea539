package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"legal-aid/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxFrameSize   = 4096
	joinTimeout    = 5 * time.Second
	defaultBufSize = 64
)

// RoomAuthorizer decide si el usuario autenticado puede unirse a una sala.
type RoomAuthorizer interface {
	CanJoinUserRoom(ctx context.Context, userID, roomUserID string) error
	CanJoinConversation(ctx context.Context, userID, conversationID string) error
}

// NewUpgrader acepta el origen configurado y peticiones sin cabecera Origin.
func NewUpgrader(allowedOrigin string) websocket.Upgrader {
	allowedOrigin = strings.TrimRight(strings.TrimSpace(allowedOrigin), "/")
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowedOrigin == "*" {
				return true
			}
			return strings.EqualFold(strings.TrimRight(origin, "/"), allowedOrigin)
		},
	}
}

// Client es una conexión websocket de un usuario autenticado.
type Client struct {
	id     string
	userID string
	conn   *websocket.Conn
	hub    *Hub
	auth   RoomAuthorizer
	logger *zap.Logger

	send      chan OutboundFrame
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, hub *Hub, auth RoomAuthorizer, userID string, buffer int, logger *zap.Logger) *Client {
	if buffer <= 0 {
		buffer = defaultBufSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	return &Client{
		id:     id,
		userID: userID,
		conn:   conn,
		hub:    hub,
		auth:   auth,
		logger: logger.With(zap.String("conn_id", id), zap.String("user_id", userID)),
		send:   make(chan OutboundFrame, buffer),
		done:   make(chan struct{}),
	}
}

func (c *Client) ID() string { return c.id }

// Push encola el frame sin bloquear; con el buffer lleno o la conexión cerrada se descarta.
func (c *Client) Push(frame OutboundFrame) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Run registra la conexión y bloquea hasta que el cliente se desconecta.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	c.logger.Info("websocket connected")

	go c.writePump()
	c.readPump(ctx)

	c.hub.Unregister(c.id)
	c.close()
	c.logger.Info("websocket disconnected")
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Client) readPump(ctx context.Context) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.Push(OutboundFrame{Event: EventError, Data: "invalid frame"})
			continue
		}
		c.handle(ctx, frame)
	}
}

func (c *Client) handle(ctx context.Context, frame Frame) {
	var kind string
	switch frame.Event {
	case EventJoinUserRoom:
		kind = "user"
	case EventJoinConversation:
		kind = "conversation"
	default:
		c.Push(OutboundFrame{Event: EventError, Data: "unknown event"})
		return
	}

	var target string
	if err := json.Unmarshal(frame.Data, &target); err != nil || strings.TrimSpace(target) == "" {
		c.Push(OutboundFrame{Event: EventError, Data: "room id required"})
		return
	}
	target = strings.TrimSpace(target)

	joinCtx, cancel := context.WithTimeout(ctx, joinTimeout)
	defer cancel()

	var (
		room    string
		authErr error
	)
	if frame.Event == EventJoinUserRoom {
		room = UserRoom(target)
		authErr = c.auth.CanJoinUserRoom(joinCtx, c.userID, target)
	} else {
		room = ConversationRoom(target)
		authErr = c.auth.CanJoinConversation(joinCtx, c.userID, target)
	}

	if authErr != nil {
		metrics.RoomJoins.WithLabelValues(kind, "rejected").Inc()
		c.logger.Info("room join rejected", zap.String("room", room), zap.Error(authErr))
		c.Push(OutboundFrame{Event: EventError, Data: authErr.Error()})
		return
	}
	if err := c.hub.Join(c.id, room); err != nil {
		c.logger.Warn("room join failed", zap.String("room", room), zap.Error(err))
		return
	}
	metrics.RoomJoins.WithLabelValues(kind, "joined").Inc()
	c.logger.Debug("room joined", zap.String("room", room))
	c.Push(OutboundFrame{Event: EventJoined, Data: room})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(frame); err != nil {
				c.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
