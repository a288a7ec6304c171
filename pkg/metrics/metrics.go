package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	jobStorage = "job_storage"

	importedEntitiesTotal = "imported_entities_total"
	exportedEntitiesTotal = "exported_entities_total"
	dbOperationsTotal     = "db_operations_total"
	dbOperationLatency    = "db_operation_duration_milliseconds"

	// Labels
	kindLabel   = "kind"
	resultLabel = "result"
	opLabel     = "op"
	verbLabel   = "verb"

	ImportResultCreated = "created"
	ImportResultUpdated = "updated"
	ImportResultFailed  = "failed"
)

var importedEntitiesLabels = []string{
	kindLabel,
	resultLabel,
}

var exportedEntitiesLabels = []string{
	kindLabel,
}

var importedEntitiesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: jobStorage,
		Name:      importedEntitiesTotal,
		Help:      "number of jobs and pipelines processed by imports, by outcome",
	},
	importedEntitiesLabels,
)

var exportedEntitiesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: jobStorage,
		Name:      exportedEntitiesTotal,
		Help:      "number of jobs and pipelines returned by exports",
	},
	exportedEntitiesLabels,
)

var dbOperationsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: jobStorage,
		Name:      dbOperationsTotal,
		Help:      "number of database driver operations",
	},
	[]string{opLabel},
)

var dbOperationLatencyMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: jobStorage,
		Name:      dbOperationLatency,
		Help:      "time spent on database driver operations, by sql verb",
		Buckets:   []float64{1, 10, 100, 300, 1000, 5000},
	},
	[]string{opLabel, verbLabel},
)

func IncreaseImportedEntitiesMetric(kind, result string) {
	labels := prometheus.Labels{
		kindLabel:   kind,
		resultLabel: result,
	}
	importedEntitiesTotalMetric.With(labels).Inc()
}

func IncreaseExportedEntitiesMetric(kind string, count int) {
	labels := prometheus.Labels{
		kindLabel: kind,
	}
	exportedEntitiesTotalMetric.With(labels).Add(float64(count))
}

// ObserveDBOperation records one driver operation. verb is the leading sql keyword, or op when there is no statement.
func ObserveDBOperation(op, verb string, elapsed time.Duration) {
	dbOperationsTotalMetric.With(prometheus.Labels{opLabel: op}).Inc()
	dbOperationLatencyMetric.With(prometheus.Labels{opLabel: op, verbLabel: verb}).Observe(float64(elapsed.Milliseconds()))
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(importedEntitiesTotalMetric)
	prometheus.MustRegister(exportedEntitiesTotalMetric)
	prometheus.MustRegister(dbOperationsTotalMetric)
	prometheus.MustRegister(dbOperationLatencyMetric)
}
