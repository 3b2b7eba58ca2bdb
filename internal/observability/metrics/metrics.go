// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ai_video_summary"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Pipeline metrics
	AnalysesTotal *prometheus.CounterVec
	StageLatency  *prometheus.HistogramVec
	StageErrors   *prometheus.CounterVec

	// Render metrics
	RendersQueued  prometheus.Counter
	RendersActive  prometheus.Gauge
	RendersTotal   *prometheus.CounterVec
	RenderLatency  prometheus.Histogram
	RenderedBytes  prometheus.Counter
	RenderQueueLen prometheus.Gauge

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	GRPCRequests *prometheus.CounterVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of video analyses by outcome",
		}, []string{"outcome", "audio"}),
		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_latency_seconds",
			Help:      "Latency of each pipeline stage in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"stage"}),
		StageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Total number of failures per pipeline stage, fatal or not",
		}, []string{"stage"}),

		RendersQueued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_queued_total",
			Help:      "Total number of audio render jobs accepted",
		}),
		RendersActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "renders_active",
			Help:      "Number of audio renders currently synthesizing",
		}),
		RendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Total number of audio render jobs by terminal state",
		}, []string{"state"}),
		RenderLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_latency_seconds",
			Help:      "Time from synthesis start to file written",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		RenderedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rendered_audio_bytes_total",
			Help:      "Total audio bytes written",
		}),
		RenderQueueLen: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "render_queue_length",
			Help:      "Number of render jobs waiting for a worker",
		}),

		KafkaPublishTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		GRPCRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "Total number of gRPC unary calls by method and code",
		}, []string{"method", "code"}),
	}
}

// RecordAnalysis records a finished AnalyzeVideo call.
func (m *Metrics) RecordAnalysis(outcome string, audio bool) {
	a := "false"
	if audio {
		a = "true"
	}
	m.AnalysesTotal.WithLabelValues(outcome, a).Inc()
}

// RecordStage records the latency of a stage and whether it failed.
func (m *Metrics) RecordStage(stage string, failed bool, latencySeconds float64) {
	m.StageLatency.WithLabelValues(stage).Observe(latencySeconds)
	if failed {
		m.StageErrors.WithLabelValues(stage).Inc()
	}
}

// RecordRenderQueued records a render job entering the queue.
func (m *Metrics) RecordRenderQueued() {
	m.RendersQueued.Inc()
	m.RenderQueueLen.Inc()
}

// RecordRenderDequeued records a job leaving the queue without being rendered.
func (m *Metrics) RecordRenderDequeued() {
	m.RenderQueueLen.Dec()
}

// RecordRenderStart records a worker picking up a job.
func (m *Metrics) RecordRenderStart() {
	m.RenderQueueLen.Dec()
	m.RendersActive.Inc()
}

// RecordRenderEnd records a render job finishing.
func (m *Metrics) RecordRenderEnd(state string, bytes int, latencySeconds float64) {
	m.RendersActive.Dec()
	m.RendersTotal.WithLabelValues(state).Inc()
	m.RenderLatency.Observe(latencySeconds)
	if bytes > 0 {
		m.RenderedBytes.Add(float64(bytes))
	}
}

// RecordRenderDropped records a job rejected before reaching a worker.
func (m *Metrics) RecordRenderDropped() {
	m.RendersTotal.WithLabelValues("dropped").Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(route string, code int) {
	m.HTTPRequests.WithLabelValues(route, httpCode(code)).Inc()
}

// RecordGRPCRequest records a served gRPC unary call.
func (m *Metrics) RecordGRPCRequest(method, code string) {
	m.GRPCRequests.WithLabelValues(method, code).Inc()
}

func httpCode(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
