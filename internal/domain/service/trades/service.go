package trades

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fantasy_trades/internal/domain/entity"
	"fantasy_trades/internal/metrics"
	"fantasy_trades/pkg/contextx"
	"fantasy_trades/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const jobName = "annotate-trades"

type SnapshotStore interface {
	// Dataset identifies the document; runs on the same dataset are
	// serialized on it.
	Dataset() string
	Load(ctx context.Context) (entity.Season, error)
	Save(ctx context.Context, season entity.Season) error
}

type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type Notifier interface {
	NotifyTradeReport(ctx context.Context, report entity.TradeReport) error
}

type Exporter interface {
	ExportTrades(path string, season entity.Season) error
}

type Service struct {
	store    SnapshotStore
	locker   Locker
	policy   entity.SeasonPolicy
	notifier Notifier
	exporter Exporter
}

func NewService(store SnapshotStore, locker Locker, policy entity.SeasonPolicy) *Service {
	return &Service{
		store:  store,
		locker: locker,
		policy: policy,
	}
}

func (s *Service) WithNotifier(notifier Notifier) *Service {
	s.notifier = notifier
	return s
}

func (s *Service) WithExporter(exporter Exporter) *Service {
	s.exporter = exporter
	return s
}

func (s *Service) Dataset() string {
	return s.store.Dataset()
}

// Annotate loads the snapshot document, attaches trade records to every
// round and writes the whole document back. Phase violations are reported
// but never stop the write.
func (s *Service) Annotate(ctx context.Context) (entity.TradeReport, error) {
	dataset := s.store.Dataset()
	ctx = contextx.WithLogger(ctx, logger(ctx).With(
		slog.String(logx.FieldJob, jobName),
		slog.String(logx.FieldDataset, dataset),
	))

	start := time.Now()

	unlock, err := s.locker.Lock(ctx, dataset)
	if err != nil {
		metrics.ObserveRun(jobName, err)
		return entity.TradeReport{}, err
	}
	defer unlock()

	report, err := s.annotate(ctx, dataset)
	metrics.ObserveRun(jobName, err)

	if err != nil {
		logger(ctx).Error("trade annotation failed", logx.Error(err), logx.Duration(start))
		return entity.TradeReport{}, err
	}

	metrics.ObserveTradeReport(report)

	logger(ctx).Info("trade annotation finished",
		slog.Int("rounds", report.Rounds),
		slog.Int("annotated", report.Annotated),
		slog.Int("violations", len(report.Violations)),
		logx.Duration(start),
	)

	if s.notifier != nil {
		if err := s.notifier.NotifyTradeReport(ctx, report); err != nil {
			logger(ctx).Warn("trade report notification failed", logx.Error(err))
		}
	}

	return report, nil
}

func (s *Service) annotate(ctx context.Context, dataset string) (entity.TradeReport, error) {
	season, err := s.store.Load(ctx)
	if err != nil {
		return entity.TradeReport{}, fmt.Errorf("load snapshot: %w", err)
	}

	annotated, err := AnnotateSeason(season, s.policy)
	if err != nil {
		return entity.TradeReport{}, fmt.Errorf("annotate season: %w", err)
	}

	report := buildReport(dataset, season, annotated, s.policy)

	for _, v := range report.Violations {
		logger(ctx).Warn("unexpected trade count",
			slog.Int(logx.FieldRound, v.Round),
			slog.Int(logx.FieldExpected, v.Expected),
			slog.Int(logx.FieldTradedOut, v.TradedOut),
			slog.Int(logx.FieldTradedIn, v.TradedIn),
		)
	}

	if err := s.store.Save(ctx, annotated); err != nil {
		return entity.TradeReport{}, fmt.Errorf("save snapshot: %w", err)
	}

	return report, nil
}

// Export writes the season's trade history to path without modifying the
// snapshot document. Rounds are annotated in memory first so the export
// reflects the current rosters.
func (s *Service) Export(ctx context.Context, path string) (entity.TradeReport, error) {
	if s.exporter == nil {
		return entity.TradeReport{}, fmt.Errorf("export trades: no exporter configured")
	}

	season, err := s.store.Load(ctx)
	if err != nil {
		return entity.TradeReport{}, fmt.Errorf("load snapshot: %w", err)
	}

	annotated, err := AnnotateSeason(season, s.policy)
	if err != nil {
		return entity.TradeReport{}, fmt.Errorf("annotate season: %w", err)
	}

	if err := s.exporter.ExportTrades(path, annotated); err != nil {
		return entity.TradeReport{}, fmt.Errorf("export trades: %w", err)
	}

	report := buildReport(s.store.Dataset(), season, annotated, s.policy)

	logger(ctx).Info("trade history exported", slog.String("path", path), slog.Int("rounds", report.Rounds))

	return report, nil
}

func buildReport(dataset string, original, annotated entity.Season, policy entity.SeasonPolicy) entity.TradeReport {
	report := entity.TradeReport{
		Dataset:    dataset,
		Rounds:     len(annotated.Rounds),
		Violations: Validate(annotated, policy.Phases),
	}

	for _, r := range annotated.Rounds {
		if r.Trades != nil {
			report.Annotated++
		}
	}

	if len(original.Rounds) > 0 && original.Rounds[0].Trades != nil {
		report.BaselinePreserved = true
	}

	if FinalRoundIndex(annotated, policy) >= 0 {
		report.Forced = 1
	}

	return report
}
