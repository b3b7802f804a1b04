// SPDX-License-Identifier: MIT

package executor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeExec    = "exec_error"
	outcomeParse   = "parse_error"
	outcomeIO      = "io_error"
)

var (
	// InvocationsTotal counts executable runs by executable and outcome.
	InvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graco_executor_invocations_total",
			Help: "Total number of batch executable invocations",
		},
		[]string{"executable", "outcome"},
	)

	// DurationSeconds observes the wall time of one DistanceMatrix call.
	DurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graco_executor_duration_seconds",
			Help:    "Duration of batch executable calls including serialisation",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"executable"},
	)

	// TempFilesActive is the number of temporary files currently held.
	TempFilesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "graco_executor_tempfiles_active",
			Help: "Number of executor temporary files not yet released",
		},
	)
)
