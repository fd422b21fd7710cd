package httpx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"fantasy_trades/pkg/contextx"
	"fantasy_trades/pkg/logx"
)

const (
	readHeaderTimeout      = 5 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type Server struct {
	Name            string
	ListenAddress   string
	Handler         http.Handler
	ShutdownTimeout time.Duration
}

// Run serves until ctx is done and then shuts the server down gracefully.
func (s Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		//nolint:exhaustruct
		Addr:              s.ListenAddress,
		Handler:           s.Handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	shutdownTimeout := s.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout) //nolint:govet
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			logger(ctx).Error("httpServer.Shutdown", slog.String("server", s.Name), logx.Error(err))
		}
	}()

	logger(ctx).Info(s.Name+" server started", slog.String("address", s.ListenAddress))

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: httpServer.ListenAndServe: %w", s.Name, err)
	}

	logger(ctx).Info(s.Name + " server stopped")

	return nil
}
