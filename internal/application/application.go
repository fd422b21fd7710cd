package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"fantasy_trades/internal/config"
	"fantasy_trades/internal/domain"
	"fantasy_trades/internal/domain/entity"
	"fantasy_trades/internal/domain/service/prices"
	"fantasy_trades/internal/domain/service/trades"
	"fantasy_trades/internal/infrastructure/export"
	"fantasy_trades/internal/infrastructure/lock"
	"fantasy_trades/internal/infrastructure/notifier"
	"fantasy_trades/internal/infrastructure/persistence"
	"fantasy_trades/internal/worker"
	"fantasy_trades/pkg/application/connectors"
	"fantasy_trades/pkg/application/modules"
	"fantasy_trades/pkg/contextx"
	"fantasy_trades/pkg/errcodes"
	"fantasy_trades/pkg/logx"
	"fantasy_trades/pkg/probe"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Application owns connections shared by the commands of one process.
type Application struct {
	cfg   config.Config
	pg    *connectors.Postgres
	redis *connectors.Redis

	localLock     *lock.Local
	localLockOnce sync.Once
}

func New(cfg config.Config) *Application {
	return &Application{
		cfg: cfg,
		pg: &connectors.Postgres{
			DSN:             cfg.Postgres.DSN,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		},
		redis: &connectors.Redis{
			Username:           cfg.Redis.Username,
			Password:           cfg.Redis.Password,
			Address:            cfg.Redis.Address,
			DatabaseNumber:     cfg.Redis.DatabaseNumber,
			PoolSize:           cfg.Redis.PoolSize,
			MinIdleConnections: cfg.Redis.MinIdleConnections,
			MaxIdleConnections: cfg.Redis.MaxIdleConnections,
		},
	}
}

func (a *Application) Close(ctx context.Context) {
	a.pg.Close(ctx)
	a.redis.Close(ctx)
}

// WithRun tags ctx and its logger with a fresh run ID.
func WithRun(ctx context.Context) context.Context {
	runID := contextx.NewRunID()
	ctx = contextx.WithRunID(ctx, runID)

	return contextx.WithLogger(ctx, logger(ctx).With(slog.String(logx.FieldRunID, runID.String())))
}

func (a *Application) AnnotateTrades(ctx context.Context, snapshotPath string) (entity.TradeReport, error) {
	svc, err := a.tradeService(ctx, snapshotPath)
	if err != nil {
		return entity.TradeReport{}, err
	}

	return svc.Annotate(WithRun(ctx))
}

func (a *Application) ExportTrades(ctx context.Context, snapshotPath, out string) (entity.TradeReport, error) {
	svc, err := a.tradeService(ctx, snapshotPath)
	if err != nil {
		return entity.TradeReport{}, err
	}

	return svc.Export(WithRun(ctx), out)
}

func (a *Application) ReconcilePrices(ctx context.Context, rawMode string) (entity.PriceSummary, error) {
	mode, err := prices.ParseMode(rawMode)
	if err != nil {
		return entity.PriceSummary{}, err
	}

	svc, err := a.priceService(ctx)
	if err != nil {
		return entity.PriceSummary{}, err
	}

	return svc.Reconcile(WithRun(ctx), mode)
}

// Enqueue pushes a trades or prices task and returns its ID.
func (a *Application) Enqueue(ctx context.Context, job, snapshotPath, rawMode string) (string, error) {
	if !a.cfg.Redis.Enabled() {
		return "", domain.NewError(errcodes.ValidationError, "REDIS_ADDRESS is required to enqueue tasks")
	}

	asynqClient := asynq.NewClient(a.redisOpt())
	defer asynqClient.Close()

	client := worker.NewClient(asynqClient, a.cfg.Worker.Queue, a.cfg.Worker.UniqueTTL, a.cfg.Worker.MaxRetry)

	switch job {
	case "trades":
		store, err := persistence.NewSnapshotStore(a.snapshotPath(snapshotPath), a.cfg.Snapshot.RoundsKey)
		if err != nil {
			return "", err
		}

		return client.EnqueueAnnotateTrades(ctx, store.Dataset())
	case "prices":
		mode, err := prices.ParseMode(rawMode)
		if err != nil {
			return "", err
		}

		return client.EnqueueReconcilePrices(ctx, mode)
	default:
		return "", domain.Errorf(errcodes.ValidationError, "unknown job %q, expected trades or prices", job)
	}
}

// RunWorker serves queued tasks together with the metrics and probe servers
// until ctx is done.
func (a *Application) RunWorker(ctx context.Context) error {
	if !a.cfg.Redis.Enabled() {
		return domain.NewError(errcodes.ValidationError, "REDIS_ADDRESS is required to run the worker")
	}

	tradeService, err := a.tradeService(ctx, "")
	if err != nil {
		return err
	}

	checks := []probe.Check{{Name: "redis", Fn: a.redis.Ping}}
	handlers := []modules.AsynqHandler{}

	var priceService worker.PriceReconciler
	if a.cfg.Postgres.DSN != "" {
		svc, err := a.priceService(ctx)
		if err != nil {
			return err
		}

		priceService = svc
		checks = append(checks, probe.Check{Name: "postgres", Fn: a.pg.Ping})
	}

	h := worker.NewHandlers(tradeService, priceService)
	handlers = append(handlers, modules.AsynqHandler{Pattern: worker.TypeAnnotateTrades, Handle: h.AnnotateTrades})

	if priceService != nil {
		handlers = append(handlers, modules.AsynqHandler{Pattern: worker.TypeReconcilePrices, Handle: h.ReconcilePrices})
	} else {
		logger(ctx).Warn("PG_DSN is not set, price tasks will not be served")
	}

	g, ctx := errgroup.WithContext(ctx)

	modules.MetricServer{
		ListenAddress: a.cfg.Worker.MetricsAddress,
	}.Run(ctx, g)

	modules.ProbeServer{
		Name:          a.cfg.App.Name,
		Version:       a.cfg.App.Version,
		ListenAddress: a.cfg.Worker.ProbeAddress,
	}.Run(ctx, g, checks...)

	modules.AsynqServer{
		RedisUsername:   a.cfg.Redis.Username,
		RedisPassword:   a.cfg.Redis.Password,
		RedisAddress:    a.cfg.Redis.Address,
		RedisDB:         a.cfg.Redis.DatabaseNumber,
		Concurrency:     a.cfg.Worker.Concurrency,
		ShutdownTimeout: a.cfg.Worker.ShutdownTimeout,
	}.Run(ctx, g, modules.AsynqQueues{a.cfg.Worker.Queue: 1}, handlers...)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("worker: %w", err)
	}

	return nil
}

func (a *Application) tradeService(ctx context.Context, snapshotPath string) (*trades.Service, error) {
	store, err := persistence.NewSnapshotStore(a.snapshotPath(snapshotPath), a.cfg.Snapshot.RoundsKey)
	if err != nil {
		return nil, err
	}

	svc := trades.NewService(store, a.locker(ctx), a.cfg.Season.Policy()).
		WithExporter(export.NewXLSX())

	if bot := a.notifier(ctx); bot != nil {
		svc = svc.WithNotifier(bot)
	}

	return svc, nil
}

func (a *Application) priceService(ctx context.Context) (*prices.Service, error) {
	if a.cfg.Postgres.DSN == "" {
		return nil, domain.NewError(errcodes.ValidationError, "PG_DSN is required to reconcile prices")
	}

	svc := prices.NewService(persistence.NewPriceRepository(a.pg.Client(ctx)))

	if bot := a.notifier(ctx); bot != nil {
		svc = svc.WithNotifier(bot)
	}

	return svc, nil
}

func (a *Application) locker(ctx context.Context) trades.Locker {
	if a.cfg.Redis.Enabled() {
		return lock.NewRedis(a.redis.Client(ctx), a.cfg.Redis.LockTTL)
	}

	a.localLockOnce.Do(func() {
		a.localLock = lock.NewLocal(a.cfg.Redis.LockTTL)
	})

	return a.localLock
}

// notifier returns nil when the bot is not configured or cannot be created;
// reports are optional.
func (a *Application) notifier(ctx context.Context) *notifier.TelegramBot {
	if !a.cfg.Bot.Enabled() {
		return nil
	}

	bot, err := notifier.NewTelegramBot(a.cfg.Bot.Token, a.cfg.Bot.ChatID)
	if err != nil {
		logger(ctx).Warn("telegram notifier disabled", logx.Error(err))
		return nil
	}

	return bot
}

func (a *Application) snapshotPath(override string) string {
	if override != "" {
		return override
	}

	return a.cfg.Snapshot.Path
}

func (a *Application) redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     a.cfg.Redis.Address,
		Username: a.cfg.Redis.Username,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DatabaseNumber,
	}
}
