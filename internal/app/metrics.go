package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the relay.
type Metrics struct {
	reg *prometheus.Registry

	Connections prometheus.Gauge
	Rooms       prometheus.Gauge
	Members     prometheus.Gauge
	Joins       *prometheus.CounterVec
	Messages    prometheus.Counter
	Dropped     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roomchat",
			Name:      "connections",
			Help:      "Live WebSocket connections.",
		}),
		Rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roomchat",
			Name:      "rooms",
			Help:      "Rooms currently registered.",
		}),
		Members: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roomchat",
			Name:      "room_members",
			Help:      "Room memberships across all rooms.",
		}),
		Joins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roomchat",
			Name:      "joins_total",
			Help:      "Join attempts by outcome.",
		}, []string{"status"}),
		Messages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roomchat",
			Name:      "chat_messages_total",
			Help:      "Accepted chat messages.",
		}),
		Dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roomchat",
			Name:      "deliveries_dropped_total",
			Help:      "Frames that could not be queued for a recipient.",
		}, []string{"reason"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Connections, m.Rooms, m.Members, m.Joins, m.Messages, m.Dropped,
	)
	return m
}

// ObserveRooms keeps the Rooms gauge equal to the number of rooms in rooms.
func (m *Metrics) ObserveRooms(rooms *RoomManagerImpl) {
	rooms.OnRoomCount(func(n int) { m.Rooms.Set(float64(n)) })
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
