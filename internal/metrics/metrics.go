// Package metrics holds the prometheus collectors updated by batch runs.
// They are exposed by pkg/metrics.PrometheusServer when the worker runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fantasy_trades/internal/domain/entity"
)

const namespace = "fantasy_trades"

//nolint:gochecknoglobals
var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Batch runs by job and outcome.",
	}, []string{"job", "outcome"})

	roundsAnnotated = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rounds_annotated",
		Help:      "Rounds carrying a trade record after the last annotation run.",
	})

	tradeViolations = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "trade_count_violations",
		Help:      "Rounds whose trade count differed from the phase's nominal count in the last run.",
	})

	priceRowsUpdated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_rows_updated_total",
		Help:      "price_change values written, by reconcile mode.",
	}, []string{"mode"})

	priceRowsInvalid = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "price_rows_invalid",
		Help:      "Rows without a usable price seen by the last scan reconciliation.",
	})
)

func ObserveRun(job string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}

	runsTotal.WithLabelValues(job, outcome).Inc()
}

func ObserveTradeReport(report entity.TradeReport) {
	roundsAnnotated.Set(float64(report.Annotated))
	tradeViolations.Set(float64(len(report.Violations)))
}

func ObservePriceSummary(summary entity.PriceSummary) {
	priceRowsUpdated.WithLabelValues(summary.Mode).Add(float64(summary.Updated))

	if summary.Rows > 0 {
		priceRowsInvalid.Set(float64(summary.Invalid))
	}
}
