package realtime

import (
	"errors"
	"slices"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"legal-aid/internal/metrics"
)

var ErrUnknownConnection = errors.New("connection not registered")

// Conn es una conexión viva a la que el hub puede empujar frames sin bloquear.
type Conn interface {
	ID() string
	// Push devuelve false si el frame se descartó para esta conexión.
	Push(frame OutboundFrame) bool
}

type member struct {
	conn  Conn
	rooms map[string]struct{}
}

// Hub registra conexiones y su pertenencia a salas.
//
// La pertenencia se indexa por id de conexión y se descarta completa en Unregister,
// de modo que una reconexión nunca hereda salas de una conexión anterior.
type Hub struct {
	logger *zap.Logger

	mu    sync.RWMutex
	conns map[string]*member
	rooms map[string]map[string]Conn
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger: logger,
		conns:  make(map[string]*member),
		rooms:  make(map[string]map[string]Conn),
	}
}

// Attach suscribe el hub a los dos eventos del bus.
func (h *Hub) Attach(bus *Bus) {
	bus.OnMessage(func(evt MessageDelivered) {
		h.Broadcast(ConversationRoom(evt.ConversationID), OutboundFrame{
			Event: EventNewMessage,
			Data:  evt.Message,
		})
	})
	bus.OnNotification(func(evt NotificationDelivered) {
		h.Broadcast(UserRoom(evt.RecipientID), OutboundFrame{
			Event: EventNewNotification,
			Data:  evt.Notification,
		})
	})
}

func (h *Hub) Register(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn.ID()]; ok {
		return
	}
	h.conns[conn.ID()] = &member{conn: conn, rooms: make(map[string]struct{})}
	metrics.ActiveConnections.Inc()
}

// Join agrega la conexión a la sala. Unirse dos veces es un no-op.
func (h *Hub) Join(connID, room string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[connID]
	if !ok {
		return ErrUnknownConnection
	}
	m.rooms[room] = struct{}{}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]Conn)
		h.rooms[room] = members
	}
	members[connID] = m.conn
	return nil
}

// Unregister quita la conexión y todas sus salas en una sola sección crítica.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[connID]
	if !ok {
		return
	}
	for room := range m.rooms {
		members := h.rooms[room]
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.conns, connID)
	metrics.ActiveConnections.Dec()
}

// Broadcast empuja el frame a cada conexión de la sala y devuelve cuántas lo aceptaron.
func (h *Hub) Broadcast(room string, frame OutboundFrame) int {
	h.mu.RLock()
	targets := lo.Values(h.rooms[room])
	h.mu.RUnlock()

	if len(targets) == 0 {
		metrics.FanoutDeliveries.WithLabelValues(frame.Event, metrics.OutcomeNoListener).Inc()
		h.logger.Debug("no listeners in room", zap.String("room", room), zap.String("event", frame.Event))
		return 0
	}

	delivered := 0
	for _, conn := range targets {
		if conn.Push(frame) {
			delivered++
			metrics.FanoutDeliveries.WithLabelValues(frame.Event, metrics.OutcomeDelivered).Inc()
			continue
		}
		metrics.FanoutDeliveries.WithLabelValues(frame.Event, metrics.OutcomeBufferFull).Inc()
		h.logger.Warn("frame dropped",
			zap.String("room", room),
			zap.String("event", frame.Event),
			zap.String("conn_id", conn.ID()),
		)
	}
	return delivered
}

// roomsOf devuelve las salas de una conexión, ordenadas.
func (h *Hub) roomsOf(connID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	m, ok := h.conns[connID]
	if !ok {
		return nil
	}
	rooms := lo.Keys(m.rooms)
	slices.Sort(rooms)
	return rooms
}

func (h *Hub) roomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
