package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status", "service"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "service"},
	)

	engagementOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_operations_total",
			Help: "Total number of engagement mutations (like, save, comment, follow)",
		},
		[]string{"operation", "status", "service"},
	)

	dialogMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_messages_total",
			Help: "Total number of dialog messages processed",
		},
		[]string{"operation", "status", "service"},
	)

	dialogMessageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dialog_message_duration_seconds",
			Help:    "Duration of dialog message operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "service"},
	)
)

func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
			serviceName,
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			serviceName,
		).Observe(duration)
	}
}

// RecordEngagementOperation инкрементирует метрику мутации
func RecordEngagementOperation(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	engagementOpsTotal.WithLabelValues(operation, status, "pulse").Inc()
}

// RecordDialogOperation фиксирует метрики операции с сообщениями
func RecordDialogOperation(operation, status string, duration time.Duration) {
	dialogMessagesTotal.WithLabelValues(operation, status, "pulse").Inc()
	dialogMessageDuration.WithLabelValues(operation, "pulse").Observe(duration.Seconds())
}
