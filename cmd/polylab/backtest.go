package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/polylab/config"
	"github.com/alejandrodnm/polylab/internal/adapters/storage"
	"github.com/alejandrodnm/polylab/internal/domain"
	"github.com/alejandrodnm/polylab/internal/ports"
	"github.com/alejandrodnm/polylab/internal/replay"
	"github.com/alejandrodnm/polylab/internal/risk"
	"github.com/alejandrodnm/polylab/internal/strategy"
)

type backtestOptions struct {
	strategy string
	holdout  bool
	dryRun   bool
	table    bool
}

func runBacktest(ctx context.Context, cfg *config.Config, notifier ports.Notifier, opts backtestOptions) {
	slog.Info("=== BACKTEST MODE: chronological replay ===",
		"data_dir", cfg.Backtest.DataDir,
		"initial_balance", cfg.Backtest.InitialBalance,
		"dry_run", opts.dryRun,
	)

	snaps, err := replay.LoadDir(cfg.Backtest.DataDir)
	if err != nil {
		slog.Error("dataset load failed", "err", err, "dir", cfg.Backtest.DataDir)
		os.Exit(1)
	}
	if len(snaps) == 0 {
		slog.Warn("empty dataset — run -fetch first", "dir", cfg.Backtest.DataDir)
		return
	}

	train, test := replay.SplitChronological(snaps, cfg.Backtest.TrainRatio)
	dataset := train
	partition := "train"
	if opts.holdout {
		dataset = test
		partition = "holdout"
	}
	slog.Info("dataset split",
		"snapshots", len(snaps),
		"train", len(train),
		"holdout", len(test),
		"replaying", partition,
	)
	if len(dataset) == 0 {
		slog.Warn("selected partition is empty", "partition", partition)
		return
	}

	kelly := domain.NewKelly(cfg.Kelly.Fraction, cfg.Kelly.MaxFraction)
	registry := strategy.Default(kelly)

	strategies := registry.All()
	if opts.strategy != "" {
		s, ok := registry.Get(opts.strategy)
		if !ok {
			slog.Error("unknown strategy", "name", opts.strategy, "registered", strategyNames(strategies))
			os.Exit(1)
		}
		strategies = []strategy.Strategy{s}
	}

	var store ports.Storage
	if !opts.dryRun {
		store, err = storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()
	}

	riskCfg := risk.Config{
		MaxPositionPct:   cfg.Risk.MaxPositionPct,
		MaxDailyLossPct:  cfg.Risk.MaxDailyLossPct,
		MaxOpenPositions: cfg.Risk.MaxOpenPositions,
		MinEdge:          cfg.Risk.MinEdge,
	}

	started := time.Now().UTC()
	reports := make([]domain.Report, 0, len(strategies))
	results := make([]domain.BacktestResult, 0, len(strategies))

	// Cada estrategia corre con su propio simulador y su propio gate: el
	// estado de pérdidas y el log de fills no se comparten entre runs.
	for _, strat := range strategies {
		sim := replay.NewSimulator(cfg.Backtest.SlippagePct, cfg.Backtest.FeePct)
		engine := replay.NewEngine(strat, risk.New(riskCfg), sim, cfg.Backtest.InitialBalance)
		result := engine.Run(dataset)
		results = append(results, result)
		reports = append(reports, domain.NewReport(result))
	}

	if err := notifier.Notify(ctx, reports); err != nil {
		slog.Warn("notifier error", "err", err)
	}
	if opts.table {
		for _, result := range results {
			notifier.PrintTrades(result)
		}
	}

	if store == nil {
		return
	}
	for i, result := range results {
		run := buildRun(result, reports[i], cfg.Backtest.DataDir+":"+partition, started)
		if err := store.SaveRun(ctx, run); err != nil {
			slog.Error("failed to persist run", "err", err, "strategy", result.Strategy)
			os.Exit(1)
		}
		slog.Info("run persisted", "id", run.ID, "strategy", run.Strategy, "trades", len(run.Trades))
	}
}

// buildRun deriva el resumen persistible de un resultado de replay.
func buildRun(result domain.BacktestResult, report domain.Report, dataset string, started time.Time) domain.BacktestRun {
	return domain.BacktestRun{
		ID:             uuid.New().String(),
		Strategy:       result.Strategy,
		Dataset:        dataset,
		StartedAt:      started,
		InitialBalance: result.InitialBalance,
		FinalBalance:   result.FinalBalance,
		TotalReturn:    report.TotalReturn(),
		WinRate:        report.WinRate(),
		MaxDrawdown:    report.MaxDrawdown(),
		Sharpe:         report.SharpeRatio(),
		Trades:         result.Trades,
	}
}

func printRuns(ctx context.Context, cfg *config.Config, notifier ports.Notifier, table bool) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	runs, err := store.GetRuns(ctx, 0)
	if err != nil {
		slog.Error("failed to load runs", "err", err)
		os.Exit(1)
	}
	notifier.PrintRuns(runs)

	// En modo tabla, el detalle de fills del run más reciente.
	if !table || len(runs) == 0 {
		return
	}
	trades, err := store.GetTrades(ctx, runs[0].ID)
	if err != nil {
		slog.Warn("failed to load trades of latest run", "err", err, "run", runs[0].ID)
		return
	}
	notifier.PrintTrades(domain.BacktestResult{Strategy: runs[0].Strategy, Trades: trades})
}

func strategyNames(strategies []strategy.Strategy) []string {
	names := make([]string, 0, len(strategies))
	for _, s := range strategies {
		names = append(names, s.Name())
	}
	return names
}
