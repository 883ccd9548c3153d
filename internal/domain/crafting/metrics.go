package crafting

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// operationTotal counts engine operations by outcome
	operationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gawain_crafting_operations_total",
		Help: "Crafting engine operations by operation and result",
	}, []string{"operation", "result"})

	// operationDuration tracks engine latency including the store round trip
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gawain_crafting_operation_duration_seconds",
		Help:    "Crafting engine operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"operation"})

	// casLost counts compare-and-set updates that matched no row
	casLost = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gawain_crafting_cas_lost_total",
		Help: "Status transitions lost to a concurrent writer",
	}, []string{"operation"})
)

func observe(op string, start time.Time, err error) {
	operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = KindOf(err).String()
	}
	operationTotal.WithLabelValues(op, result).Inc()
}
