// Package metrics expone las métricas Prometheus del servicio.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "legalaid"

// Resultados de un evento de fan-out.
const (
	OutcomeDelivered  = "delivered"
	OutcomeNoListener = "no_listener"
	OutcomeBufferFull = "buffer_full"
)

var (
	// MessagesSent cuenta mensajes persistidos por el handler de ingreso.
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Messages persisted through the ingress handler",
	})

	// NotificationsCreated cuenta notificaciones por resultado (created, failed).
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_created_total",
			Help:      "Notification records created per message fan-out",
		},
		[]string{"outcome"},
	)

	// FanoutDeliveries cuenta entregas en vivo por evento y resultado.
	FanoutDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_deliveries_total",
			Help:      "Live deliveries attempted by the room manager",
		},
		[]string{"event", "outcome"},
	)

	// ActiveConnections es el número de websockets registrados.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_active_connections",
		Help:      "Currently registered websocket connections",
	})

	RoomJoins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_room_joins_total",
			Help:      "Room join requests by kind and result",
		},
		[]string{"kind", "result"},
	)
)
