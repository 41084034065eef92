package metrics

import (
	"net/http"
	"time"

	"cryptoquote/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cryptoquote"

// Collector owns a private registry so tests and multiple servers in one
// process never collide on the default registerer.
type Collector struct {
	registry       *prometheus.Registry
	cacheLookups   *prometheus.CounterVec
	toolCalls      *prometheus.CounterVec
	toolErrors     *prometheus.CounterVec
	adapterLatency *prometheus.HistogramVec
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quote_cache_lookups_total",
				Help:      "Quote cache lookups by result (hit or miss).",
			},
			[]string{"result"},
		),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Tool invocations by tool and outcome.",
			},
			[]string{"tool", "outcome"},
		),
		toolErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_errors_total",
				Help:      "Classified tool failures by tool and error kind.",
			},
			[]string{"tool", "kind"},
		),
		adapterLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "adapter_latency_seconds",
				Help:      "Exchange adapter call latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
	c.registry.MustRegister(
		c.cacheLookups,
		c.toolCalls,
		c.toolErrors,
		c.adapterLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

// ToolCall records one invocation; an empty kind means success.
func (c *Collector) ToolCall(tool string, kind domain.ErrorKind) {
	if kind == "" {
		c.toolCalls.WithLabelValues(tool, "success").Inc()
		return
	}
	c.toolCalls.WithLabelValues(tool, "error").Inc()
	c.toolErrors.WithLabelValues(tool, string(kind)).Inc()
}

func (c *Collector) AdapterLatency(op string, d time.Duration) {
	c.adapterLatency.WithLabelValues(op).Observe(d.Seconds())
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
