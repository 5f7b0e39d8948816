package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cours-de-latin/lemmatizer"
)

const (
	LabelPath       = "path"
	LabelStatusCode = "status_code"
)

// metrics holds the Prometheus collectors of one server.
type metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tokensTotal     prometheus.Counter
}

func newMetrics(h *lemmatizer.Handle) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lemmatizer",
			Name:      "requests_total",
			Help:      "HTTP requests by path and status code.",
		}, []string{LabelPath, LabelStatusCode}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lemmatizer",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by path.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{LabelPath}),
		tokensTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lemmatizer",
			Name:      "tokens_total",
			Help:      "Tokens produced by the model.",
		}),
	}
	ready := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "lemmatizer",
		Name:        "model_loaded",
		Help:        "1 when the model is ready to serve.",
		ConstLabels: prometheus.Labels{"model": h.Name()},
	}, func() float64 {
		if h.Loaded() {
			return 1
		}
		return 0
	})
	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.tokensTotal,
		ready,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) observe(path string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}
