package modules

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"fantasy_trades/pkg/metrics"
)

type MetricServer struct {
	ListenAddress string
	// Gatherer defaults to the global prometheus registry.
	Gatherer prometheus.Gatherer
}

func (m MetricServer) Run(ctx context.Context, g *errgroup.Group) {
	prometheusServer := metrics.NewPrometheusServer(m.ListenAddress)
	if m.Gatherer != nil {
		prometheusServer = prometheusServer.WithGatherer(m.Gatherer)
	}

	g.Go(func() error {
		if err := prometheusServer.Run(ctx); err != nil {
			return fmt.Errorf("prometheusServer.Run: %w", err)
		}

		return nil
	})
}
