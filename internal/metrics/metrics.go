// Package metrics provides a small interface for counting swapkit
// operations (quotes computed, blockhash refreshes, submission outcomes).
package metrics

import (
	"context"
	"log/slog"
	"sync"
)

// Metrics defines the interface for collecting operational counters.
type Metrics interface {
	// IncrementCounter increments a counter metric by the specified value.
	IncrementCounter(ctx context.Context, name string, value uint64) error

	// UpdateGauge sets a gauge metric to the specified value.
	UpdateGauge(ctx context.Context, name string, value float64) error

	// Flush reports any buffered metrics data.
	Flush(ctx context.Context) error
}

// NoopMetrics is a Metrics implementation that does nothing.
// Useful for testing or when metrics are disabled.
type NoopMetrics struct{}

// NewNoopMetrics creates a new NoopMetrics.
func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) IncrementCounter(ctx context.Context, name string, value uint64) error {
	return nil
}
func (n *NoopMetrics) UpdateGauge(ctx context.Context, name string, value float64) error {
	return nil
}
func (n *NoopMetrics) Flush(ctx context.Context) error { return nil }

// LogMetrics is a Metrics implementation that logs all metrics using slog.
type LogMetrics struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	gauges   map[string]float64
	counters map[string]uint64
}

// NewLogMetrics creates a new LogMetrics with the given logger.
// If logger is nil, the default logger is used.
func NewLogMetrics(logger *slog.Logger) *LogMetrics {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMetrics{
		logger:   logger,
		gauges:   make(map[string]float64),
		counters: make(map[string]uint64),
	}
}

// IncrementCounter logs the counter increment.
func (l *LogMetrics) IncrementCounter(ctx context.Context, name string, value uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counters[name] += value
	l.logger.Debug("counter incremented", "name", name, "value", value, "total", l.counters[name])
	return nil
}

// UpdateGauge logs the gauge update.
func (l *LogMetrics) UpdateGauge(ctx context.Context, name string, value float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.gauges[name] = value
	l.logger.Debug("gauge updated", "name", name, "value", value)
	return nil
}

// Flush logs all current metric values.
func (l *LogMetrics) Flush(ctx context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	l.logger.Info("metrics flush",
		"gauges", l.gauges,
		"counters", l.counters,
	)
	return nil
}

// Counter returns the current value of a counter, for tests.
func (l *LogMetrics) Counter(name string) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.counters[name]
}

// Metric names used by swapkit.
const (
	MetricQuotesComputed         = "quotes_computed"
	MetricBlockhashRefreshes     = "blockhash_refreshes"
	MetricBlockhashConsumed      = "blockhash_consumed"
	MetricTransactionsSubmitted  = "transactions_submitted"
	MetricTransactionsConfirmed  = "transactions_confirmed"
	MetricTransactionsRejected   = "transactions_rejected"
	MetricTransactionsExpired    = "transactions_expired"
	MetricSubmissionsUnavailable = "submissions_unavailable"
)
