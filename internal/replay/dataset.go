package replay

// dataset.go — construcción del dataset de replay.
//
// Cada mercado resuelto genera un snapshot por horizonte con el precio YES
// recuperado "as of" close - horizonte (nunca un precio futuro). El sort
// final por timestamp es el punto que garantiza la causalidad de todo el
// backtest: el engine consume la secuencia en ese orden.

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/alejandrodnm/polylab/internal/domain"
)

var csvHeader = []string{"timestamp", "market_id", "question", "yes_price", "no_price", "volume"}

// BuildSnapshots genera un snapshot por (muestra, horizonte) con histórico
// disponible. Horizontes sin precio recuperable se saltan; el resultado
// queda ordenado ascendente por timestamp.
func BuildSnapshots(samples []domain.MarketSample, histories map[string]domain.PriceSeries) []domain.Snapshot {
	var snaps []domain.Snapshot
	for _, sample := range samples {
		series := histories[sample.YesToken]
		if series.Empty() {
			continue
		}
		for _, horizon := range domain.Horizons {
			ts := sample.CloseTS - int64(horizon)*60
			yes, ok := series.AtOrBefore(ts)
			if !ok {
				continue
			}
			no := 1 - yes
			snaps = append(snaps, domain.Snapshot{
				Timestamp: time.Unix(ts, 0).UTC(),
				Market:    snapshotMarket(sample.MarketID, sample.Question, sample.Category, sample.Volume, yes, no),
				YesPrice:  yes,
				NoPrice:   no,
				Volume:    sample.Volume,
			})
		}
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.Before(snaps[j].Timestamp)
	})
	return snaps
}

// snapshotMarket arma el descriptor de mercado con los tokens sintéticos
// <id>_yes / <id>_no que usan las estrategias durante el replay.
func snapshotMarket(id, question, category string, volume, yes, no float64) domain.Market {
	return domain.Market{
		ID:       id,
		Question: question,
		Category: category,
		Volume:   volume,
		Tokens: [2]domain.Token{
			{TokenID: id + "_yes", Outcome: "Yes", Price: yes},
			{TokenID: id + "_no", Outcome: "No", Price: no},
		},
	}
}

// SplitChronological parte la secuencia en train/test por ratio. Con más
// de un snapshot ambas particiones quedan no vacías; train ++ test es
// exactamente la entrada.
func SplitChronological(snaps []domain.Snapshot, trainRatio float64) (train, test []domain.Snapshot) {
	if len(snaps) == 0 {
		return nil, nil
	}
	idx := int(float64(len(snaps)) * trainRatio)
	if idx > len(snaps)-1 {
		idx = len(snaps) - 1
	}
	if idx < 1 {
		idx = 1
	}
	return snaps[:idx], snaps[idx:]
}

// BaselineResolution evalúa el baseline ingenuo "comprar YES 5 minutos
// antes del cierre y aguantar hasta resolución" sobre las muestras con
// histórico. Devuelve posiciones ganadoras, P&L total por unidad y el
// número de mercados evaluados.
func BaselineResolution(samples []domain.MarketSample, histories map[string]domain.PriceSeries) (wins int, profit float64, evaluated int) {
	for _, sample := range samples {
		series := histories[sample.YesToken]
		if series.Empty() {
			continue
		}
		yes, ok := series.AtOrBefore(sample.CloseTS - 5*60)
		if !ok {
			continue
		}
		won, pnl := domain.OutcomeProfit("YES", yes, sample.YesWon)
		if won {
			wins++
		}
		profit += pnl
		evaluated++
	}
	return wins, profit, evaluated
}

// ExportCSV escribe los snapshots en formato tabular plano y devuelve las
// filas escritas. Precios con 6 decimales, volumen con 2.
func ExportCSV(snaps []domain.Snapshot, path string) (int, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("replay.ExportCSV: mkdir %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("replay.ExportCSV: create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return 0, fmt.Errorf("replay.ExportCSV: write header: %w", err)
	}

	count := 0
	for _, snap := range snaps {
		record := []string{
			snap.Timestamp.UTC().Format(time.RFC3339),
			snap.Market.ID,
			snap.Market.Question,
			fmt.Sprintf("%.6f", snap.YesPrice),
			fmt.Sprintf("%.6f", snap.NoPrice),
			fmt.Sprintf("%.2f", snap.Volume),
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return count, fmt.Errorf("replay.ExportCSV: write row: %w", err)
		}
		count++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return count, fmt.Errorf("replay.ExportCSV: flush: %w", err)
	}
	if err := f.Close(); err != nil {
		return count, fmt.Errorf("replay.ExportCSV: close: %w", err)
	}
	return count, nil
}

// LoadCSV carga un export tabular. Un fichero inexistente devuelve una
// secuencia vacía; filas malformadas se saltan una a una.
func LoadCSV(path string) ([]domain.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("replay.LoadCSV: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("replay.LoadCSV: parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := indexColumns(records[0])
	for _, required := range []string{"timestamp", "market_id", "yes_price", "no_price"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("replay.LoadCSV: %s: missing column %q", path, required)
		}
	}

	var snaps []domain.Snapshot
	for _, record := range records[1:] {
		snap, ok := snapshotFromFields(
			field(record, cols, "timestamp"),
			field(record, cols, "market_id"),
			field(record, cols, "question"),
			field(record, cols, "yes_price"),
			field(record, cols, "no_price"),
			field(record, cols, "volume"),
		)
		if !ok {
			slog.Debug("skipping malformed dataset row", "file", filepath.Base(path))
			continue
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// snapshotRecord es la forma JSON de un snapshot exportado.
type snapshotRecord struct {
	Timestamp string      `json:"timestamp"`
	MarketID  string      `json:"market_id"`
	Question  string      `json:"question"`
	YesPrice  json.Number `json:"yes_price"`
	NoPrice   json.Number `json:"no_price"`
	Volume    json.Number `json:"volume"`
}

// LoadJSON carga un array JSON de snapshots con los mismos campos que el
// CSV. Registros malformados se saltan individualmente.
func LoadJSON(path string) ([]domain.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("replay.LoadJSON: read %s: %w", path, err)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("replay.LoadJSON: parse %s: %w", path, err)
	}

	var snaps []domain.Snapshot
	for _, row := range rows {
		var rec snapshotRecord
		if err := json.Unmarshal(row, &rec); err != nil {
			slog.Debug("skipping malformed dataset record", "file", filepath.Base(path), "err", err)
			continue
		}
		snap, ok := snapshotFromFields(
			rec.Timestamp,
			rec.MarketID,
			rec.Question,
			rec.YesPrice.String(),
			rec.NoPrice.String(),
			rec.Volume.String(),
		)
		if !ok {
			slog.Debug("skipping malformed dataset record", "file", filepath.Base(path))
			continue
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// LoadDir carga todos los *.csv del directorio y devuelve la secuencia
// combinada ordenada por timestamp.
func LoadDir(dir string) ([]domain.Snapshot, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("replay.LoadDir: glob %s: %w", dir, err)
	}
	sort.Strings(paths)

	var snaps []domain.Snapshot
	for _, path := range paths {
		loaded, err := LoadCSV(path)
		if err != nil {
			return nil, fmt.Errorf("replay.LoadDir: %w", err)
		}
		snaps = append(snaps, loaded...)
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.Before(snaps[j].Timestamp)
	})
	return snaps, nil
}

// --- helpers ---

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	return cols
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func snapshotFromFields(ts, marketID, question, yesPrice, noPrice, volume string) (domain.Snapshot, bool) {
	parsed, ok := parseTimestamp(ts)
	if !ok || marketID == "" {
		return domain.Snapshot{}, false
	}
	yes, errYes := strconv.ParseFloat(yesPrice, 64)
	no, errNo := strconv.ParseFloat(noPrice, 64)
	if errYes != nil || errNo != nil {
		return domain.Snapshot{}, false
	}
	vol, err := strconv.ParseFloat(volume, 64)
	if err != nil {
		vol = 0
	}

	return domain.Snapshot{
		Timestamp: parsed,
		Market:    snapshotMarket(marketID, question, "", vol, yes, no),
		YesPrice:  yes,
		NoPrice:   no,
		Volume:    vol,
	}, true
}

// parseTimestamp acepta RFC3339 y la forma ISO sin zona horaria.
func parseTimestamp(v string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", v); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
