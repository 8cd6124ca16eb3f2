package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	validationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modgraph_validation_runs_total",
		Help: "Total dependency validations by result",
	}, []string{"result"})

	validationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "modgraph_validation_duration_seconds",
		Help:    "Time to load a catalog snapshot and validate it",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~1.6s
	})

	plansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modgraph_plans_total",
		Help: "Total activation and deactivation plans by direction and outcome",
	}, []string{"direction", "result"})

	catalogLoadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modgraph_catalog_load_errors_total",
		Help: "Total failures to read a tenant catalog",
	})

	auditErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modgraph_audit_errors_total",
		Help: "Total plan records the audit sink failed to accept",
	})
)
