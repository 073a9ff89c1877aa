package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"leaveadvisor/internal/domain/leave"
)

const namespace = "leaveadvisor"

// Collector holds the service's Prometheus collectors. It implements
// leave.Observer so analyses are counted where they complete.
type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ToolCalls       *prometheus.CounterVec
	Analyses        *prometheus.CounterVec
	RiskScore       prometheus.Histogram

	gatherer prometheus.Gatherer
}

func New(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method and status code",
			},
			[]string{"method", "code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		ToolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Tool invocations by tool name and outcome",
			},
			[]string{"tool", "outcome"},
		),
		Analyses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Completed leave analyses by recommendation",
			},
			[]string{"recommendation"},
		),
		RiskScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "risk_score",
				Help:      "Distribution of computed risk scores",
				Buckets:   prometheus.LinearBuckets(0, 10, 11),
			},
		),
		gatherer: reg,
	}
}

func (c *Collector) AnalysisCompleted(recommendation leave.Recommendation, riskScore int) {
	c.Analyses.WithLabelValues(string(recommendation)).Inc()
	c.RiskScore.Observe(float64(riskScore))
}

func (c *Collector) ToolCalled(tool string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.ToolCalls.WithLabelValues(tool, outcome).Inc()
}

func (c *Collector) Record(method string, status int, duration time.Duration) {
	c.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
