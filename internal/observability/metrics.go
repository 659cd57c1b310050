package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "morse_http_requests_total",
			Help: "Total number of HTTP requests processed by the morse service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "morse_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "morse_ws_active_connections",
			Help: "Number of active channel websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "morse_ws_events_total",
			Help: "Total number of websocket lifecycle events.",
		},
		[]string{"join", "event"},
	)
	activeChannels = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "morse_active_channels",
			Help: "Number of channels currently holding at least one member.",
		},
	)
	relayedSignalsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "morse_relayed_signals_total",
			Help: "Total number of frames relayed between channel members.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "morse_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		activeChannels,
		relayedSignalsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

// IncWSEvent counts a lifecycle event, labelled by how the member joined
// ("specific" or "random").
func IncWSEvent(join, event string) {
	wsEventsTotal.WithLabelValues(join, event).Inc()
}

func SetActiveChannels(n int) {
	activeChannels.Set(float64(n))
}

func IncRelayedSignal() {
	relayedSignalsTotal.Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
