package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const namespace = "blogapi"

// Entity labels for write counters.
const (
	EntityPost    = "post"
	EntityComment = "comment"
)

// Write operation labels.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// PostCounter reports how many posts are stored.
type PostCounter interface {
	Count(ctx context.Context) (int, error)
}

// Metrics holds all application metrics
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	EntityWritesTotal   *prometheus.CounterVec

	logger *zap.Logger
}

// NewWithRegistry creates and registers the HTTP and write metrics with registerer.
func NewWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Metrics {
	factory := promauto.With(registerer)
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "endpoint"},
		),
		EntityWritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entity_writes_total",
				Help:      "Total number of successful post and comment writes",
			},
			[]string{"entity", "operation"},
		),
		logger: logger,
	}
}

// RegisterPostsTotal exposes the stored post count as a gauge read at scrape time.
func RegisterPostsTotal(registerer prometheus.Registerer, posts PostCounter, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	promauto.With(registerer).NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "posts_total",
			Help:      "Current number of stored posts",
		},
		func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			n, err := posts.Count(ctx)
			if err != nil {
				logger.Warn("Failed to count posts for metrics", zap.Error(err))
				return 0
			}
			return float64(n)
		},
	)
}

// RecordWrite counts one successful write of entity.
func (m *Metrics) RecordWrite(entity, operation string) {
	if m == nil {
		return
	}
	m.safeExecute("RecordWrite", func() {
		m.EntityWritesTotal.WithLabelValues(entity, operation).Inc()
	})
}

// safeExecute wraps metric operations with panic recovery
func (m *Metrics) safeExecute(operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Panic in metrics operation",
				zap.String("operation", operation),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}
