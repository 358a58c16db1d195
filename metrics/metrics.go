/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package metrics holds the Prometheus collectors for store operations and
// process invocations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels.
const (
	ResultOK    = "ok"
	ResultMiss  = "miss"
	ResultError = "error"
)

var (
	// StoreOperations counts object store calls by operation and result.
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediacrush_store_operations_total",
		Help: "Object store operations by operation and result",
	}, []string{"operation", "result"})

	// Invocations counts finished process invocations by outcome.
	Invocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediacrush_invocations_total",
		Help: "Process invocations by outcome",
	}, []string{"outcome"})

	// InvocationDuration tracks wall time of invocations, teardown included.
	InvocationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mediacrush_invocation_duration_seconds",
		Help:    "Wall time of process invocations in seconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	})
)

// ObserveStore records one store operation. A nil err counts as ok.
func ObserveStore(operation string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	StoreOperations.WithLabelValues(operation, result).Inc()
}

// ObserveStoreMiss records a lookup that found nothing.
func ObserveStoreMiss(operation string) {
	StoreOperations.WithLabelValues(operation, ResultMiss).Inc()
}

// ObserveInvocation records one invocation outcome and its duration.
func ObserveInvocation(outcome string, elapsed time.Duration) {
	Invocations.WithLabelValues(outcome).Inc()
	InvocationDuration.Observe(elapsed.Seconds())
}
