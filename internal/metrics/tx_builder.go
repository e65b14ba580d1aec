package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/service/txbuilder"
)

var (
	txBuilderBuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mercury",
		Subsystem: "tx_builder",
		Name:      "builds_total",
		Help:      "Count of transaction builds by operation and outcome.",
	}, []string{"network", "operation", "status", "kind"})

	txBuilderBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mercury",
		Subsystem: "tx_builder",
		Name:      "build_duration_seconds",
		Help:      "Duration of a transaction build.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "operation", "status"})

	txBuilderFeeIterations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mercury",
		Subsystem: "tx_builder",
		Name:      "fee_iterations",
		Help:      "Number of build passes needed before the fee converged.",
		Buckets:   prometheus.LinearBuckets(1, 1, 10),
	}, []string{"network", "operation"})
)

type TxBuilder struct {
	network model.Network
}

func NewTxBuilder(network model.Network) *TxBuilder {
	if network == "" {
		network = "unknown"
	}
	return &TxBuilder{network: network}
}

// ObserveBuild records the outcome of a build. Failed builds are labelled with
// the error kind so validation failures can be told apart from store outages.
func (m TxBuilder) ObserveBuild(operation string, err error, started time.Time) {
	status := statusOf(err)
	kind := "none"
	if err != nil {
		kind = txbuilder.KindOf(err).String()
	}
	txBuilderBuildsTotal.WithLabelValues(string(m.network), operation, status, kind).Inc()
	txBuilderBuildDuration.WithLabelValues(string(m.network), operation, status).
		Observe(time.Since(started).Seconds())
}

func (m TxBuilder) ObserveFeeIterations(operation string, iterations int) {
	txBuilderFeeIterations.WithLabelValues(string(m.network), operation).Observe(float64(iterations))
}
