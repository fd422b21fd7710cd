package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"fantasy_trades/internal/domain"
	"fantasy_trades/internal/domain/entity"
	"fantasy_trades/internal/domain/service/prices"
	"fantasy_trades/pkg/contextx"
	"fantasy_trades/pkg/errcodes"
	"fantasy_trades/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type TradeAnnotator interface {
	Dataset() string
	Annotate(ctx context.Context) (entity.TradeReport, error)
}

type PriceReconciler interface {
	Reconcile(ctx context.Context, mode prices.Mode) (entity.PriceSummary, error)
}

type Handlers struct {
	trades TradeAnnotator
	prices PriceReconciler
}

func NewHandlers(trades TradeAnnotator, prices PriceReconciler) *Handlers {
	return &Handlers{
		trades: trades,
		prices: prices,
	}
}

func (h *Handlers) AnnotateTrades(ctx context.Context, task *asynq.Task) error {
	var payload AnnotateTradesPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return skip(domain.WrapError(err, errcodes.InvalidTaskPayload, "decode payload"))
	}

	if payload.Dataset != h.trades.Dataset() {
		return skip(domain.Errorf(errcodes.InvalidTaskPayload,
			"dataset %q is not served by this worker", payload.Dataset))
	}

	ctx = taskContext(ctx, task)

	if _, err := h.trades.Annotate(ctx); err != nil {
		return fmt.Errorf("annotate trades: %w", err)
	}

	return nil
}

func (h *Handlers) ReconcilePrices(ctx context.Context, task *asynq.Task) error {
	var payload ReconcilePricesPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return skip(domain.WrapError(err, errcodes.InvalidTaskPayload, "decode payload"))
	}

	mode, err := prices.ParseMode(string(payload.Mode))
	if err != nil {
		return skip(err)
	}

	ctx = taskContext(ctx, task)

	if _, err := h.prices.Reconcile(ctx, mode); err != nil {
		return fmt.Errorf("reconcile prices: %w", err)
	}

	return nil
}

// taskContext gives every task its own run ID.
func taskContext(ctx context.Context, task *asynq.Task) context.Context {
	runID := contextx.NewRunID()
	taskID, _ := asynq.GetTaskID(ctx)

	ctx = contextx.WithRunID(ctx, runID)

	return contextx.WithLogger(ctx, logger(ctx).With(
		slog.String(logx.FieldRunID, runID.String()),
		slog.String(logx.FieldTaskType, task.Type()),
		slog.String(logx.FieldTaskID, taskID),
	))
}

func skip(err error) error {
	return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
}
