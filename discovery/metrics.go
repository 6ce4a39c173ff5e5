package discovery

import (
	"github.com/prometheus/client_golang/prometheus"

	"dev.hon.one/scandium/common"
	"dev.hon.one/scandium/util"
)

// MetricsRegistry - Registry for discovery run metrics, served by the HTTP server.
var MetricsRegistry = prometheus.NewRegistry()

var metricFrontierDepth = util.NewGauge(MetricsRegistry, common.PrometheusNamespace,
	"discovery", "frontier_depth", "Number of devices queued and awaiting a worker.", nil)
var metricVisitedTotal = util.NewCounter(MetricsRegistry, common.PrometheusNamespace,
	"discovery", "visited_total", "Number of devices which finished processing.")
var metricAttemptsTotal = util.NewCounter(MetricsRegistry, common.PrometheusNamespace,
	"discovery", "attempts_total", "Number of connection attempts made.")
var metricErrorsTotal = util.NewCounterVec(MetricsRegistry, common.PrometheusNamespace,
	"discovery", "errors_total", "Number of failed connection attempts by error kind.", []string{"kind"})
