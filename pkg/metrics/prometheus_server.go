package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fantasy_trades/pkg/httpx"
)

type PrometheusServer struct {
	listenAddress string
	gatherer      prometheus.Gatherer
}

func NewPrometheusServer(listenAddress string) PrometheusServer {
	return PrometheusServer{
		listenAddress: listenAddress,
		gatherer:      prometheus.DefaultGatherer,
	}
}

// WithGatherer serves g instead of the default registry.
func (p PrometheusServer) WithGatherer(g prometheus.Gatherer) PrometheusServer {
	p.gatherer = g
	return p
}

func (p PrometheusServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})) //nolint:exhaustruct

	return mux
}

func (p PrometheusServer) Run(ctx context.Context) error {
	return httpx.Server{
		Name:          "prometheus",
		ListenAddress: p.listenAddress,
		Handler:       p.Handler(),
	}.Run(ctx)
}
