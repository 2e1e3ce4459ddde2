package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alejandrodnm/polylab/config"
	"github.com/alejandrodnm/polylab/internal/adapters/histcache"
	"github.com/alejandrodnm/polylab/internal/adapters/polymarket"
	"github.com/alejandrodnm/polylab/internal/history"
	"github.com/alejandrodnm/polylab/internal/replay"
)

// datasetFile es el CSV de snapshots que produce -fetch dentro de data_dir;
// featuresFile es el dataset de features etiquetado que lo acompaña.
const (
	datasetFile  = "polymarket_replay.csv"
	featuresFile = "polymarket_features.csv"
)

func runFetch(ctx context.Context, cfg *config.Config) {
	slog.Info("=== FETCH MODE: resolved markets + histories → replay dataset ===",
		"max_markets", cfg.Fetch.MaxMarkets,
		"fidelity", cfg.Fetch.Fidelity,
		"workers", cfg.Fetch.Workers,
	)

	client, err := polymarket.NewClient(cfg.API.CLOBBase, cfg.API.GammaBase, cfg.Fetch.Retries)
	if err != nil {
		slog.Error("failed to build API client", "err", err)
		os.Exit(1)
	}

	cache := histcache.New(cfg.Cache.Dir, cfg.CacheTTL())

	fetcher := history.New(history.Config{
		MaxMarkets: cfg.Fetch.MaxMarkets,
		PageSize:   cfg.Fetch.PageSize,
		Fidelity:   cfg.Fetch.Fidelity,
		Workers:    cfg.Fetch.Workers,
	}, client, client, cache)

	samples, err := fetcher.Markets(ctx)
	if err != nil {
		slog.Error("market fetch failed", "err", err)
		os.Exit(1)
	}
	if len(samples) == 0 {
		slog.Warn("no resolved markets returned — nothing to build")
		return
	}

	histories, err := fetcher.Histories(ctx, samples)
	if err != nil {
		slog.Error("history fetch failed", "err", err)
		os.Exit(1)
	}

	snaps := replay.BuildSnapshots(samples, histories)
	if len(snaps) == 0 {
		slog.Warn("no snapshots built — dataset not written",
			"markets", len(samples), "histories", len(histories))
		return
	}

	path := filepath.Join(cfg.Backtest.DataDir, datasetFile)
	rows, err := replay.ExportCSV(snaps, path)
	if err != nil {
		slog.Error("dataset export failed", "err", err, "path", path)
		os.Exit(1)
	}

	// El dataset de features es secundario: si falla, el replay CSV ya
	// está en disco y el fetch sigue siendo útil.
	featuresPath := filepath.Join(cfg.Backtest.DataDir, featuresFile)
	if featRows, err := replay.ExportFeaturesCSV(replay.BuildFeatureRows(samples, histories), featuresPath); err != nil {
		slog.Warn("features export failed", "err", err, "path", featuresPath)
	} else {
		slog.Info("features dataset ready", "path", featuresPath, "rows", featRows)
	}

	// Referencia rápida del sesgo del dataset: comprar YES 5 minutos antes
	// del cierre y mantener hasta resolución.
	if wins, profit, evaluated := replay.BaselineResolution(samples, histories); evaluated > 0 {
		slog.Info("resolution baseline (buy YES at close-5m, hold)",
			"markets", evaluated,
			"yes_won", wins,
			"yes_win_rate", fmt.Sprintf("%.1f%%", float64(wins)/float64(evaluated)*100),
			"avg_profit_per_unit", fmt.Sprintf("%+.4f", profit/float64(evaluated)),
		)
	}

	slog.Info("dataset ready",
		"path", path,
		"rows", rows,
		"markets", len(samples),
		"histories", len(histories),
	)
}
