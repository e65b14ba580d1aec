package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

var (
	snapshotRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mercury",
		Subsystem: "snapshot_refresher",
		Name:      "refresh_total",
		Help:      "Count of chain snapshot refreshes.",
	}, []string{"network", "status"})

	snapshotRefreshDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mercury",
		Subsystem: "snapshot_refresher",
		Name:      "refresh_duration_seconds",
		Help:      "Duration of a chain snapshot refresh.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	snapshotTipNumber = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mercury",
		Subsystem: "snapshot_refresher",
		Name:      "tip_block_number",
		Help:      "Tip block number of the current snapshot.",
	}, []string{"network"})

	snapshotExcludedCells = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mercury",
		Subsystem: "snapshot_refresher",
		Name:      "excluded_cells",
		Help:      "Number of cells held back from selection by pending transactions.",
	}, []string{"network"})
)

type SnapshotRefresher struct {
	network model.Network
}

func NewSnapshotRefresher(network model.Network) *SnapshotRefresher {
	if network == "" {
		network = "unknown"
	}
	return &SnapshotRefresher{network: network}
}

func (m SnapshotRefresher) ObserveRefresh(err error, started time.Time) {
	status := statusOf(err)
	snapshotRefreshTotal.WithLabelValues(string(m.network), status).Inc()
	snapshotRefreshDuration.WithLabelValues(string(m.network), status).Observe(time.Since(started).Seconds())
}

func (m SnapshotRefresher) SetTip(number uint64) {
	snapshotTipNumber.WithLabelValues(string(m.network)).Set(float64(number))
}

func (m SnapshotRefresher) SetExcluded(count int) {
	snapshotExcludedCells.WithLabelValues(string(m.network)).Set(float64(count))
}
