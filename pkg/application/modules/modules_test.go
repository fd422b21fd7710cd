package modules_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"fantasy_trades/pkg/application/modules"
	"fantasy_trades/pkg/probe"
)

func get(ctx context.Context, rq *require.Assertions, url string) (int, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	rq.NoError(err)

	resp, err := http.DefaultClient.Do(req)
	rq.NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	rq.NoError(err)

	return resp.StatusCode, string(body)
}

func TestHTTPModules(t *testing.T) {
	rq := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "modules_test_gauge", Help: "Test."})
	registry.MustRegister(gauge)
	gauge.Set(7)

	g, gctx := errgroup.WithContext(ctx)

	modules.MetricServer{ListenAddress: ":10040", Gatherer: registry}.Run(gctx, g)
	modules.ProbeServer{Name: "fantasy-trades", Version: "v1", ListenAddress: ":10041"}.Run(gctx, g,
		probe.Check{Name: "redis", Fn: func(context.Context) error { return nil }},
	)

	// Wait for servers to start.
	time.Sleep(time.Second)

	code, body := get(ctx, rq, "http://:10040/metrics")
	rq.Equal(http.StatusOK, code)
	rq.Contains(body, "modules_test_gauge 7")

	code, body = get(ctx, rq, "http://:10041/ready")
	rq.Equal(http.StatusOK, code)
	rq.Equal(`{"name":"fantasy-trades","version":"v1"}`, body)

	cancel()

	rq.NoError(g.Wait())
}
