// Package metrics provides Prometheus metrics for the flexroom service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus metric exposed by the service.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Room lifecycle
	roomsOpen    prometheus.Gauge
	roomsCreated prometheus.Counter
	roomsJoined  prometheus.Counter
	roomsLeft    prometheus.Counter
	roomsCancels prometheus.Counter
	roomsExpired prometheus.Counter

	// LCU protocol channel
	lcuRequests        *prometheus.CounterVec
	lcuRequestDuration prometheus.Histogram
	socketReconnects   prometheus.Counter
	socketEvents       prometheus.Counter
	socketBadFrames    prometheus.Counter

	// Observer fan-out
	observersConnected prometheus.Gauge
	messagesDropped    prometheus.Counter

	// Local HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry so the default Go collectors stay out of the exposition.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "flexroom",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.roomsOpen = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "rooms_open",
		Help:      "Number of rooms currently open for matchmaking",
	})
	m.roomsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "rooms_created_total",
		Help:      "Total number of rooms created",
	})
	m.roomsJoined = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "rooms_joined_total",
		Help:      "Total number of successful room joins",
	})
	m.roomsLeft = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "rooms_left_total",
		Help:      "Total number of players that left a room",
	})
	m.roomsCancels = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "rooms_canceled_total",
		Help:      "Total number of rooms canceled by their host",
	})
	m.roomsExpired = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "rooms_expired_total",
		Help:      "Total number of rooms removed by the stale sweep",
	})

	m.lcuRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "lcu_requests_total",
			Help:      "Total number of REST calls issued to the game client",
		},
		[]string{"method", "status"},
	)
	m.lcuRequestDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "lcu_request_duration_milliseconds",
		Help:      "Latency of REST calls to the game client in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.socketReconnects = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "socket_reconnects_total",
		Help:      "Total number of event-socket reconnect attempts",
	})
	m.socketEvents = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "socket_events_total",
		Help:      "Total number of event frames dispatched to handlers",
	})
	m.socketBadFrames = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "socket_bad_frames_total",
		Help:      "Total number of malformed or unrecognized socket frames",
	})

	m.observersConnected = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "observers_connected",
		Help:      "Number of observers attached to the notification bridge",
	})
	m.messagesDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "messages_dropped_total",
		Help:      "Total number of notifications dropped because no observer could take them",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// GetRegistry returns the registry all metrics are registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// UpdateOpenRooms sets the open-room gauge.
func UpdateOpenRooms(count int) { globalManager.roomsOpen.Set(float64(count)) }

// RecordRoomCreated increments the created-room counter.
func RecordRoomCreated() { globalManager.roomsCreated.Inc() }

// RecordRoomJoined increments the joined-room counter.
func RecordRoomJoined() { globalManager.roomsJoined.Inc() }

// RecordRoomLeft increments the left-room counter.
func RecordRoomLeft() { globalManager.roomsLeft.Inc() }

// RecordRoomCanceled increments the canceled-room counter.
func RecordRoomCanceled() { globalManager.roomsCancels.Inc() }

// RecordRoomExpired increments the stale-sweep removal counter.
func RecordRoomExpired() { globalManager.roomsExpired.Inc() }

// RecordLCURequest records one REST call to the game client.
func RecordLCURequest(method, status string) {
	globalManager.lcuRequests.WithLabelValues(method, status).Inc()
}

// RecordLCURequestDuration records REST call latency in milliseconds.
func RecordLCURequestDuration(ms float64) {
	globalManager.lcuRequestDuration.Observe(ms)
}

// RecordSocketReconnect increments the reconnect-attempt counter.
func RecordSocketReconnect() { globalManager.socketReconnects.Inc() }

// RecordSocketEvent increments the dispatched-event counter.
func RecordSocketEvent() { globalManager.socketEvents.Inc() }

// RecordSocketBadFrame increments the malformed-frame counter.
func RecordSocketBadFrame() { globalManager.socketBadFrames.Inc() }

// UpdateObserverCount sets the attached-observer gauge.
func UpdateObserverCount(count int) { globalManager.observersConnected.Set(float64(count)) }

// RecordMessageDropped increments the dropped-notification counter.
func RecordMessageDropped() { globalManager.messagesDropped.Inc() }

// RecordHTTPRequest records an HTTP request on the local surface.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}
