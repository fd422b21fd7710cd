package modules

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fantasy_trades/pkg/probe"
)

type ProbeServer struct {
	Name          string
	Version       string
	ListenAddress string
}

// Run serves liveness unconditionally and readiness while every check passes.
func (p ProbeServer) Run(ctx context.Context, g *errgroup.Group, checks ...probe.Check) {
	probeServer := probe.NewServer(
		p.ListenAddress,
		probe.Options{
			Name:    p.Name,
			Version: p.Version,
		},
		checks...,
	)

	g.Go(func() error {
		if err := probeServer.Run(ctx); err != nil {
			return fmt.Errorf("probeServer.Run: %w", err)
		}

		return nil
	})
}
