package custodian

import (
	"time"

	"github.com/findy-network/findy-custodian/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custodian_operations_total",
		Help: "Total number of custodian operations by result kind",
	}, []string{"op", "result"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "custodian_operation_duration_seconds",
		Help:    "Duration of custodian operations including the agent calls",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"op"})

	inconsistencies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "custodian_inconsistencies_total",
		Help: "Agent and store states that diverged and need manual cleanup",
	})

	auditFindings = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "custodian_audit_findings",
		Help: "Findings of the latest reconciliation audit",
	}, []string{"finding"})
)

// observe records the operation. Use it with defer and time.Now() taken at the
// start of the operation.
func observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = kindLabel(core.KindOf(err))
	}
	operations.WithLabelValues(op, result).Inc()
	operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func kindLabel(k core.Kind) string {
	switch k {
	case core.SyntacticallyInvalid:
		return "syntax"
	case core.SemanticallyInvalid:
		return "semantic"
	case core.NotFound:
		return "not_found"
	case core.Conflict:
		return "conflict"
	case core.NotImplemented:
		return "not_implemented"
	case core.Upstream:
		return "upstream"
	}
	return "internal"
}
