package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "indelibled"

var RequestsByRoute = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code",
	},
	[]string{"method", "route", "code"},
)

var RequestLatency = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	},
	[]string{"method", "route"},
)

var ErrorsByCode = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "errors_total",
		Help:      "Failed calls by error code",
	},
	[]string{"name"},
)

var TokensMinted = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_minted_total",
		Help:      "Minted tokens by mint path",
	},
	[]string{"path"},
)

var Withdrawals = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "withdrawals_total",
		Help:      "Completed withdrawals",
	},
)

var CollectionState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "collection_state",
		Help:      "Collection lifecycle flags, 1 once reached",
	},
	[]string{"state"},
)

// Version information of this binary
var Version = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "version",
		Help:      "Version information of this binary",
	},
	[]string{"version", "goversion", "started_at"},
)
