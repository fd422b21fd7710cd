package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fantasy_trades/pkg/logx"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logx.New(os.Stderr, "error", false).Error("command failed", logx.Error(err))
		cancel()
		os.Exit(1) //nolint:gocritic
	}
}
