package probe_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"fantasy_trades/pkg/probe"
)

func TestServer_Handler(t *testing.T) {
	rq := require.New(t)

	healthy := probe.Check{Name: "postgres", Fn: func(context.Context) error { return nil }}
	broken := probe.Check{Name: "redis", Fn: func(context.Context) error { return errors.New("connection refused") }}

	testCases := []struct {
		name       string
		target     string
		checks     []probe.Check
		statusCode int
		body       string
	}{
		{
			name:       "Health handler",
			target:     "/healthz",
			checks:     []probe.Check{broken},
			statusCode: http.StatusOK,
			body:       `{"name":"app-1","version":"v0.0.1"}`,
		},
		{
			name:       "Ready handler",
			target:     "/ready",
			checks:     []probe.Check{healthy},
			statusCode: http.StatusOK,
			body:       `{"name":"app-1","version":"v0.0.1"}`,
		},
		{
			name:       "Ready handler with failing check",
			target:     "/ready",
			checks:     []probe.Check{healthy, broken},
			statusCode: http.StatusServiceUnavailable,
			body:       `{"name":"app-1","version":"v0.0.1","failed":"redis","error":"connection refused"}`,
		},
		{
			name:       "Invalid endpoint",
			target:     "/invalid",
			statusCode: http.StatusNotFound,
			body:       "404 page not found\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			server := probe.NewServer(":0", probe.Options{Name: "app-1", Version: "v0.0.1"}, tc.checks...)

			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.target, http.NoBody))

			rq.Equal(tc.statusCode, rec.Code)
			rq.Equal(tc.body, rec.Body.String())
		})
	}
}

func TestServer_Run(t *testing.T) {
	rq := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := probe.NewServer(":10001", probe.Options{Name: "app-2", Version: "v0.0.2"})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})

	// Wait for server to start.
	time.Sleep(time.Second)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://:10001/ready", http.NoBody)
	rq.NoError(err)

	resp, err := http.DefaultClient.Do(req)
	rq.NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	rq.NoError(err)

	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal(`{"name":"app-2","version":"v0.0.2"}`, string(body))

	cancel()

	rq.NoError(g.Wait())
}
