package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonathan/resume-curator/internal/types"
)

// Registry holds every resume_curator metric. It is separate from the default registry so a
// CLI run exports only its own series.
var Registry = prometheus.NewRegistry()

var (
	ProviderAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_curator_provider_attempts_total",
			Help: "Provider attempts by provider and outcome code (ok on success)",
		},
		[]string{"provider", "code"},
	)
	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resume_curator_provider_latency_seconds",
			Help:    "Provider attempt duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)
	SelectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_curator_selections_total",
			Help: "Completed selection runs by status",
		},
		[]string{"status"},
	)
)

// Selection statuses.
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
	StatusRejected  = "rejected"
)

// attemptOK labels a successful attempt.
const attemptOK = "ok"

func init() {
	Registry.MustRegister(ProviderAttemptsTotal, ProviderLatency, SelectionsTotal)
}

// ObserveAttempt records one provider attempt. An empty code means the attempt succeeded.
func ObserveAttempt(provider string, code types.ErrorCode, d time.Duration) {
	label := string(code)
	if label == "" {
		label = attemptOK
	}
	ProviderAttemptsTotal.WithLabelValues(provider, label).Inc()
	ProviderLatency.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveSelection records the final status of a selection run.
func ObserveSelection(status string) {
	SelectionsTotal.WithLabelValues(status).Inc()
}

// WriteMetricsFile dumps Registry to path in the Prometheus text exposition format, for the
// node exporter textfile collector.
func WriteMetricsFile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
