package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"fantasy_trades/internal/domain"
	"fantasy_trades/internal/domain/service/prices"
	"fantasy_trades/pkg/errcodes"
	"fantasy_trades/pkg/logx"
)

type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Client struct {
	enqueuer  Enqueuer
	queue     string
	uniqueTTL time.Duration
	maxRetry  int
}

func NewClient(enqueuer Enqueuer, queue string, uniqueTTL time.Duration, maxRetry int) *Client {
	return &Client{
		enqueuer:  enqueuer,
		queue:     queue,
		uniqueTTL: uniqueTTL,
		maxRetry:  maxRetry,
	}
}

func (c *Client) EnqueueAnnotateTrades(ctx context.Context, dataset string) (string, error) {
	task, err := NewAnnotateTradesTask(dataset)
	if err != nil {
		return "", err
	}

	return c.enqueue(ctx, task)
}

func (c *Client) EnqueueReconcilePrices(ctx context.Context, mode prices.Mode) (string, error) {
	task, err := NewReconcilePricesTask(mode)
	if err != nil {
		return "", err
	}

	return c.enqueue(ctx, task)
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task) (string, error) {
	info, err := c.enqueuer.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.Unique(c.uniqueTTL),
		asynq.MaxRetry(c.maxRetry),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return "", domain.WrapError(err, errcodes.RunInProgress, "same task is already queued")
	}

	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}

	logger(ctx).Info("task enqueued",
		slog.String(logx.FieldTaskType, task.Type()),
		slog.String(logx.FieldTaskID, info.ID),
		slog.String("queue", info.Queue),
	)

	return info.ID, nil
}
