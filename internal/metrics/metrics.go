package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

const namespace = "ki_metadata"

// Metrics owns a private registry so tests and multiple apps never collide
// on the global one.
type Metrics struct {
	registry *prometheus.Registry

	uploads          *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	captions         *prometheus.CounterVec
	faceOutcomes     *prometheus.CounterVec
	graphFailures    prometheus.Counter
	graphNodes       *prometheus.GaugeVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Uploads received, by validation result.",
		}, []string{"result"}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of the analysis pipeline per upload.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		captions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captions_total",
			Help:      "Winning caption labels.",
		}, []string{"label"}),
		faceOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "face_outcomes_total",
			Help:      "Face analysis outcomes.",
		}, []string{"outcome"}),
		graphFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_write_failures_total",
			Help:      "Graph upserts that failed and were swallowed.",
		}),
		graphNodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_elements",
			Help:      "Elements currently stored in the graph, by kind.",
		}, []string{"kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.uploads,
		m.analysisDuration,
		m.captions,
		m.faceOutcomes,
		m.graphFailures,
		m.graphNodes,
		m.httpRequests,
		m.httpDuration,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// UploadAccepted counts an upload that passed validation
func (m *Metrics) UploadAccepted() {
	m.uploads.WithLabelValues("accepted").Inc()
}

// UploadRejected counts an upload refused with a client error
func (m *Metrics) UploadRejected(reason string) {
	m.uploads.WithLabelValues(reason).Inc()
}

// ObserveAnalysis records one finished pipeline run
func (m *Metrics) ObserveAnalysis(record domain.AnalysisRecord, elapsed time.Duration) {
	m.analysisDuration.Observe(elapsed.Seconds())
	m.captions.WithLabelValues(record.Caption).Inc()
	m.faceOutcomes.WithLabelValues(record.FaceInfo.Outcome.String()).Inc()
}

func (m *Metrics) GraphWriteFailed() {
	m.graphFailures.Inc()
}

// SetGraphCounts publishes the latest graph totals
func (m *Metrics) SetGraphCounts(counts domain.GraphCounts) {
	m.graphNodes.WithLabelValues("description").Set(float64(counts.Descriptions))
	m.graphNodes.WithLabelValues("person").Set(float64(counts.Persons))
	m.graphNodes.WithLabelValues("describes").Set(float64(counts.Edges))
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
