package server

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/veridict/veridict/internal/index"
	"github.com/veridict/veridict/internal/model"
)

// metrics holds the server's prometheus instruments on a private
// registry, so tests can run many servers without collisions
type metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	scores   prometheus.Histogram
	statuses *prometheus.CounterVec
}

func newMetrics(idx index.Index) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "veridict_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "veridict_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "veridict_truthfulness_score",
			Help:    "Distribution of truthfulness scores.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		statuses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "veridict_claims_total",
			Help: "Verified claims by status.",
		}, []string{"status"}),
	}

	evidence := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "veridict_evidence_items",
		Help: "Items currently in the evidence index.",
	}, func() float64 {
		count, err := idx.Count(context.Background())
		if err != nil {
			return 0
		}
		return float64(count)
	})

	m.registry.MustRegister(m.requests, m.duration, m.scores, m.statuses, evidence)
	return m
}

// observe is the gin middleware recording request counts and latency
func (s *Server) observe(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	s.metrics.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	s.metrics.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

// observeResult records verification-level metrics
func (m *metrics) observeResult(result *model.Result) {
	m.scores.Observe(result.Report.TruthfulnessScore)
	for _, rec := range result.Records {
		m.statuses.WithLabelValues(string(rec.Status)).Inc()
	}
}
