package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/polylab/config"
	"github.com/alejandrodnm/polylab/internal/adapters/notify"
	"github.com/alejandrodnm/polylab/internal/domain"
	"github.com/alejandrodnm/polylab/internal/ports"
	"github.com/alejandrodnm/polylab/internal/strategy"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	fetch := flag.Bool("fetch", false, "download resolved markets + price histories and build the replay dataset")
	backtest := flag.Bool("backtest", false, "replay the dataset against the registered strategies")
	list := flag.Bool("list", false, "print registered strategies and exit")
	runs := flag.Bool("runs", false, "print recorded backtest runs and exit")
	strategyName := flag.String("strategy", "", "restrict -backtest to a single strategy")
	holdout := flag.Bool("holdout", false, "replay the holdout partition instead of the training one")
	dryRun := flag.Bool("dry-run", false, "do not persist backtest runs")
	table := flag.Bool("table", false, "print full tables + trade log (default: compact 1-line)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	notifier := notify.NewConsole(*table)

	switch {
	case *fetch:
		runFetch(ctx, cfg)
	case *backtest:
		runBacktest(ctx, cfg, notifier, backtestOptions{
			strategy: *strategyName,
			holdout:  *holdout,
			dryRun:   *dryRun,
			table:    *table,
		})
	case *runs:
		printRuns(ctx, cfg, notifier, *table)
	case *list:
		printStrategies(cfg, notifier)
	default:
		flag.Usage()
		os.Exit(2)
	}

	slog.Info("polylab done")
}

func printStrategies(cfg *config.Config, notifier ports.Notifier) {
	kelly := domain.NewKelly(cfg.Kelly.Fraction, cfg.Kelly.MaxFraction)

	var names []string
	for _, s := range strategy.Default(kelly).All() {
		names = append(names, s.Name())
	}
	notifier.PrintStrategies(names)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
