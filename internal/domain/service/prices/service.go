package prices

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fantasy_trades/internal/domain"
	"fantasy_trades/internal/domain/entity"
	"fantasy_trades/internal/metrics"
	"fantasy_trades/pkg/contextx"
	"fantasy_trades/pkg/errcodes"
	"fantasy_trades/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const jobName = "reconcile-prices"

// Mode selects where deltas are computed.
type Mode string

const (
	// ModeScan reads the series and computes deltas in process.
	ModeScan Mode = "scan"
	// ModeWindow computes deltas in the database with a LAG window.
	ModeWindow Mode = "window"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeScan, ModeWindow:
		return Mode(s), nil
	case "":
		return ModeScan, nil
	default:
		return "", domain.Errorf(errcodes.InvalidReconcileMode, "unknown reconcile mode %q", s)
	}
}

type Repository interface {
	// ReconcileInTx hands every row to apply inside one transaction that
	// holds the reconciliation lock, then writes the price_change of the
	// rows apply returns. It reports how many rows were written.
	ReconcileInTx(ctx context.Context, apply func([]entity.PlayerRoundPrice) []entity.PlayerRoundPrice) (int, error)
	// ReconcileWindow performs the same computation as a single statement.
	ReconcileWindow(ctx context.Context) (int, error)
}

type Notifier interface {
	NotifyPriceSummary(ctx context.Context, summary entity.PriceSummary) error
}

type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) WithNotifier(notifier Notifier) *Service {
	s.notifier = notifier
	return s
}

func (s *Service) Reconcile(ctx context.Context, mode Mode) (entity.PriceSummary, error) {
	ctx = contextx.WithLogger(ctx, logger(ctx).With(
		slog.String(logx.FieldJob, jobName),
		slog.String(logx.FieldMode, string(mode)),
	))

	start := time.Now()

	summary, err := s.reconcile(ctx, mode)
	metrics.ObserveRun(jobName, err)

	if err != nil {
		logger(ctx).Error("price reconciliation failed", logx.Error(err), logx.Duration(start))
		return entity.PriceSummary{}, err
	}

	metrics.ObservePriceSummary(summary)

	logger(ctx).Info("price reconciliation finished",
		slog.Int("rows", summary.Rows),
		slog.Int("players", summary.Players),
		slog.Int(logx.FieldRowsUpdated, summary.Updated),
		slog.Int("invalid", summary.Invalid),
		logx.Duration(start),
	)

	if s.notifier != nil {
		if err := s.notifier.NotifyPriceSummary(ctx, summary); err != nil {
			logger(ctx).Warn("price summary notification failed", logx.Error(err))
		}
	}

	return summary, nil
}

func (s *Service) reconcile(ctx context.Context, mode Mode) (entity.PriceSummary, error) {
	switch mode {
	case ModeScan:
		var summary entity.PriceSummary

		updated, err := s.repo.ReconcileInTx(ctx, func(rows []entity.PlayerRoundPrice) []entity.PlayerRoundPrice {
			reconciled := ReconcilePriceChanges(rows)
			summary = Summarize(mode, reconciled, 0)

			for _, r := range reconciled {
				if !r.HasValidPrice() {
					logger(ctx).Debug("price skipped",
						slog.Int64(logx.FieldPlayerID, r.PlayerID),
						slog.Int(logx.FieldRound, r.Round),
					)
				}
			}

			return Changed(rows, reconciled)
		})
		if err != nil {
			return entity.PriceSummary{}, fmt.Errorf("reconcile in transaction: %w", err)
		}

		summary.Updated = updated

		return summary, nil

	case ModeWindow:
		updated, err := s.repo.ReconcileWindow(ctx)
		if err != nil {
			return entity.PriceSummary{}, fmt.Errorf("reconcile with window: %w", err)
		}

		return entity.PriceSummary{Mode: string(mode), Updated: updated}, nil

	default:
		return entity.PriceSummary{}, domain.Errorf(errcodes.InvalidReconcileMode, "unknown reconcile mode %q", mode)
	}
}
