package replay

// features.go — dataset de features para investigación offline. Una fila
// por mercado y horizonte, con el label de resolución incluido.

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/alejandrodnm/polylab/internal/domain"
)

var featuresHeader = []string{
	"market_id", "close_ts", "horizon_m", "category",
	"p", "p_minus_5m", "p_minus_15m", "p_minus_60m",
	"mom5", "mom15", "mom60", "range60", "std60", "dist_mid",
	"yes_won",
}

// BuildFeatureRows agrega las feature rows de todas las muestras con
// historia no vacía, en el orden de entrada.
func BuildFeatureRows(samples []domain.MarketSample, histories map[string]domain.PriceSeries) []domain.FeatureRow {
	var rows []domain.FeatureRow
	for _, sample := range samples {
		series, ok := histories[sample.YesToken]
		if !ok || series.Empty() {
			continue
		}
		rows = append(rows, domain.BuildFeatureRows(sample, series)...)
	}
	return rows
}

// ExportFeaturesCSV escribe las feature rows en formato tabular plano y
// devuelve las filas escritas. Métricas con 6 decimales.
func ExportFeaturesCSV(rows []domain.FeatureRow, path string) (int, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("replay.ExportFeaturesCSV: mkdir %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("replay.ExportFeaturesCSV: create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(featuresHeader); err != nil {
		f.Close()
		return 0, fmt.Errorf("replay.ExportFeaturesCSV: write header: %w", err)
	}

	count := 0
	for _, row := range rows {
		record := []string{
			row.MarketID,
			strconv.FormatInt(row.CloseTS, 10),
			strconv.Itoa(row.HorizonM),
			row.Category,
			fmt.Sprintf("%.6f", row.P),
			fmt.Sprintf("%.6f", row.PMinus5m),
			fmt.Sprintf("%.6f", row.PMinus15m),
			fmt.Sprintf("%.6f", row.PMinus60m),
			fmt.Sprintf("%.6f", row.Mom5),
			fmt.Sprintf("%.6f", row.Mom15),
			fmt.Sprintf("%.6f", row.Mom60),
			fmt.Sprintf("%.6f", row.Range60),
			fmt.Sprintf("%.6f", row.Std60),
			fmt.Sprintf("%.6f", row.DistMid),
			strconv.FormatBool(row.YesWon),
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return count, fmt.Errorf("replay.ExportFeaturesCSV: write row: %w", err)
		}
		count++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return count, fmt.Errorf("replay.ExportFeaturesCSV: flush: %w", err)
	}
	if err := f.Close(); err != nil {
		return count, fmt.Errorf("replay.ExportFeaturesCSV: close: %w", err)
	}
	return count, nil
}
