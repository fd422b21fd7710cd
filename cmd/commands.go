package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"fantasy_trades/internal/application"
	"fantasy_trades/internal/config"
	"fantasy_trades/internal/domain/entity"
	"fantasy_trades/pkg/contextx"
	"fantasy_trades/pkg/logx"
)

type appKey struct{}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fantasy-trades",
		Short:         "Annotate roster trades and reconcile player price changes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config load: %w", err)
			}

			log := logx.New(os.Stderr, cfg.App.LogLevel, cfg.App.NoColor).With(
				slog.String(logx.FieldAppName, cfg.App.Name),
				slog.String(logx.FieldAppVersion, cfg.App.Version),
			)
			slog.SetDefault(log)

			ctx := contextx.WithLogger(cmd.Context(), log)
			ctx = context.WithValue(ctx, appKey{}, application.New(cfg))
			cmd.SetContext(ctx)

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if app, ok := cmd.Context().Value(appKey{}).(*application.Application); ok {
				app.Close(cmd.Context())
			}
		},
	}

	root.AddCommand(
		newAnnotateTradesCmd(),
		newExportTradesCmd(),
		newReconcilePricesCmd(),
		newEnqueueCmd(),
		newWorkerCmd(),
	)

	return root
}

func appFrom(cmd *cobra.Command) *application.Application {
	return cmd.Context().Value(appKey{}).(*application.Application) //nolint:forcetypeassert
}

func newAnnotateTradesCmd() *cobra.Command {
	var snapshot string

	cmd := &cobra.Command{
		Use:   "annotate-trades",
		Short: "Attach tradedOut/tradedIn records to every round of the snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := appFrom(cmd).AnnotateTrades(cmd.Context(), snapshot)
			if err != nil {
				return err
			}

			printTradeReport(cmd, report)

			return nil
		},
	}

	cmd.Flags().StringVar(&snapshot, "snapshot", "", "snapshot document (default SNAPSHOT_PATH)")

	return cmd
}

func newExportTradesCmd() *cobra.Command {
	var snapshot, out string

	cmd := &cobra.Command{
		Use:   "export-trades",
		Short: "Write the season's trade history to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := appFrom(cmd).ExportTrades(cmd.Context(), snapshot, out)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %d rounds to %s\n", report.Rounds, out)

			return nil
		},
	}

	cmd.Flags().StringVar(&snapshot, "snapshot", "", "snapshot document (default SNAPSHOT_PATH)")
	cmd.Flags().StringVar(&out, "out", "", "workbook to write")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func newReconcilePricesCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "reconcile-prices",
		Short: "Recompute price_change for every player_round_prices row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := appFrom(cmd).ReconcilePrices(cmd.Context(), mode)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "mode=%s rows=%d players=%d updated=%d debuts=%d invalid=%d\n",
				summary.Mode, summary.Rows, summary.Players, summary.Updated, summary.Debuts, summary.Invalid)

			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "scan", "scan or window")

	return cmd
}

func newEnqueueCmd() *cobra.Command {
	var snapshot, mode string

	cmd := &cobra.Command{
		Use:       "enqueue trades|prices",
		Short:     "Queue a run for the worker",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"trades", "prices"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := appFrom(cmd).Enqueue(cmd.Context(), args[0], snapshot, mode)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), id)

			return nil
		},
	}

	cmd.Flags().StringVar(&snapshot, "snapshot", "", "snapshot document for trades (default SNAPSHOT_PATH)")
	cmd.Flags().StringVar(&mode, "mode", "scan", "reconcile mode for prices")

	return cmd
}

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Serve queued runs with metrics and probe endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return appFrom(cmd).RunWorker(cmd.Context())
		},
	}
}

func printTradeReport(cmd *cobra.Command, report entity.TradeReport) {
	fmt.Fprintf(cmd.OutOrStdout(), "rounds=%d annotated=%d violations=%d\n",
		report.Rounds, report.Annotated, len(report.Violations))

	for _, v := range report.Violations {
		fmt.Fprintf(cmd.OutOrStdout(), "  round %d: %d out / %d in, expected %d\n",
			v.Round, v.TradedOut, v.TradedIn, v.Expected)
	}
}
