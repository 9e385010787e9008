package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StockOpsMetrics records batch throughput for the stock operations engine.
type StockOpsMetrics struct {
	batchDuration *prometheus.HistogramVec
	lines         *prometheus.CounterVec
	fulfillments  *prometheus.CounterVec
}

// NewStockOpsMetrics registers the stock operation metrics on the provided registerer.
func NewStockOpsMetrics(reg prometheus.Registerer) *StockOpsMetrics {
	if reg == nil {
		return &StockOpsMetrics{}
	}
	batchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stock_batch_duration_seconds",
		Help:    "Duration of stock batch operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	lines := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_batch_lines",
		Help: "Processed stock batch lines by outcome.",
	}, []string{"operation", "result"})
	fulfillments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backorder_fulfillments",
		Help: "Backorder fulfillment allocations by resulting status.",
	}, []string{"status"})
	reg.MustRegister(batchDuration, lines, fulfillments)
	return &StockOpsMetrics{
		batchDuration: batchDuration,
		lines:         lines,
		fulfillments:  fulfillments,
	}
}

// ObserveBatch records the duration of one batch call.
func (m *StockOpsMetrics) ObserveBatch(operation string, duration time.Duration) {
	if m == nil || m.batchDuration == nil {
		return
	}
	m.batchDuration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncLine counts one processed line with its outcome.
func (m *StockOpsMetrics) IncLine(operation, result string) {
	if m == nil || m.lines == nil {
		return
	}
	m.lines.WithLabelValues(normalizeLabel(operation), normalizeLabel(result)).Inc()
}

// IncFulfillment counts one backorder allocation.
func (m *StockOpsMetrics) IncFulfillment(status string) {
	if m == nil || m.fulfillments == nil {
		return
	}
	m.fulfillments.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
