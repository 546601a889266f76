// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacketsProcessedTotal counts capture records handled by the pipeline.
	PacketsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acparse_packets_processed_total",
			Help: "Total number of capture records processed",
		},
		[]string{"direction"},
	)

	// PacketsSkippedTotal counts capture records dropped before dissection.
	PacketsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acparse_packets_skipped_total",
			Help: "Total number of capture records skipped",
		},
		[]string{"reason"},
	)

	// MessagesDissectedTotal counts dissected messages by type.
	MessagesDissectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acparse_messages_dissected_total",
			Help: "Total number of messages dissected",
		},
		[]string{"message_type"},
	)

	// DecodeFailuresTotal counts messages that failed typed decoding.
	DecodeFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "acparse_decode_failures_total",
			Help: "Total number of messages that failed typed decoding",
		},
	)

	// FragmentGroupsActive tracks in-flight fragment reassembly groups.
	FragmentGroupsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "acparse_fragment_groups_active",
			Help: "Number of fragment groups currently awaiting reassembly",
		},
	)

	// FragmentGroupsStaleTotal counts groups dropped for exceeding their TTL.
	FragmentGroupsStaleTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "acparse_fragment_groups_stale_total",
			Help: "Total number of fragment groups dropped as stale",
		},
	)

	// FragmentConflictsTotal counts retransmissions with mismatched bytes.
	FragmentConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "acparse_fragment_conflicts_total",
			Help: "Total number of fragment conflicts detected",
		},
	)

	// EntitiesTracked tracks the size of the extracted entity database.
	EntitiesTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "acparse_entities_tracked",
			Help: "Number of entities currently tracked in the database",
		},
	)
)
