package signaling

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pairline_connections",
		Help: "Currently registered signaling connections",
	})

	metricRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pairline_rooms",
		Help: "Rooms currently held by the hub",
	})

	metricRoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pairline_rooms_created_total",
		Help: "Rooms created",
	})

	metricRoomsPaired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pairline_rooms_paired_total",
		Help: "Successful joins that filled a room",
	})

	metricCodeCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pairline_code_collisions_total",
		Help: "Generated pairing codes rejected because a live room held them",
	})

	metricInbound = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pairline_inbound_messages_total",
		Help: "Client frames processed by the hub, by type",
	}, []string{"type"})

	metricRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pairline_relayed_messages_total",
		Help: "Frames delivered to another participant, by type",
	}, []string{"type"})

	// reason is one of malformed, unknown_type, room_not_found, room_full, no_code
	metricRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pairline_rejected_messages_total",
		Help: "Client frames that failed, by reason",
	}, []string{"reason"})
)
