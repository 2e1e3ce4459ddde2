package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de polylab: ingesta de históricos,
// construcción del dataset y replay.
type Config struct {
	Fetch    FetchConfig    `yaml:"fetch"`
	Cache    CacheConfig    `yaml:"cache"`
	Backtest BacktestConfig `yaml:"backtest"`
	Risk     RiskConfig     `yaml:"risk"`
	Kelly    KellyConfig    `yaml:"kelly"`
	API      APIConfig      `yaml:"api"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// FetchConfig controla la descarga de mercados resueltos y sus históricos.
type FetchConfig struct {
	MaxMarkets int `yaml:"max_markets"`
	PageSize   int `yaml:"page_size"`
	// Fidelity es la resolución del histórico en minutos por punto.
	Fidelity int `yaml:"fidelity"`
	Retries  int `yaml:"retries"`
	Workers  int `yaml:"workers"`
}

// CacheConfig controla la caché local de series de precios.
type CacheConfig struct {
	Dir        string `yaml:"dir"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// BacktestConfig controla el dataset y las fricciones del replay.
type BacktestConfig struct {
	DataDir        string  `yaml:"data_dir"`
	InitialBalance float64 `yaml:"initial_balance"`
	SlippagePct    float64 `yaml:"slippage_pct"`
	FeePct         float64 `yaml:"fee_pct"`
	// TrainRatio parte el dataset en orden cronológico; el resto es holdout.
	TrainRatio float64 `yaml:"train_ratio"`
}

// RiskConfig controla los gates de admisión de señales.
type RiskConfig struct {
	MaxPositionPct   float64 `yaml:"max_position_pct"`
	MaxDailyLossPct  float64 `yaml:"max_daily_loss_pct"`
	MaxOpenPositions int     `yaml:"max_open_positions"`
	MinEdge          float64 `yaml:"min_edge"`
}

// KellyConfig controla el sizing de posiciones.
type KellyConfig struct {
	Fraction    float64 `yaml:"fraction"`     // 1.0 = Kelly puro
	MaxFraction float64 `yaml:"max_fraction"` // cap absoluto sobre el bankroll
}

// APIConfig contiene los base URLs de las APIs.
type APIConfig struct {
	CLOBBase  string `yaml:"clob_base"`
	GammaBase string `yaml:"gamma_base"`
}

// StorageConfig controla dónde se persisten los runs.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// CacheTTL devuelve el TTL de la caché en memoria como time.Duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("POLYLAB_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Fetch.MaxMarkets <= 0 {
		cfg.Fetch.MaxMarkets = 1200
	}
	if cfg.Fetch.PageSize <= 0 {
		cfg.Fetch.PageSize = 500
	}
	if cfg.Fetch.Fidelity <= 0 {
		cfg.Fetch.Fidelity = 1
	}
	if cfg.Fetch.Retries <= 0 {
		cfg.Fetch.Retries = 3
	}
	if cfg.Fetch.Workers <= 0 {
		cfg.Fetch.Workers = 4
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = "data/cache"
	}
	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = 300
	}
	if cfg.Backtest.DataDir == "" {
		cfg.Backtest.DataDir = "data/backtest"
	}
	if cfg.Backtest.InitialBalance <= 0 {
		cfg.Backtest.InitialBalance = 10000
	}
	if cfg.Backtest.SlippagePct <= 0 {
		cfg.Backtest.SlippagePct = 0.005
	}
	if cfg.Backtest.FeePct <= 0 {
		cfg.Backtest.FeePct = 0.0001
	}
	if cfg.Backtest.TrainRatio <= 0 || cfg.Backtest.TrainRatio >= 1 {
		cfg.Backtest.TrainRatio = 0.7
	}
	if cfg.Risk.MaxPositionPct <= 0 {
		cfg.Risk.MaxPositionPct = 0.10
	}
	if cfg.Risk.MaxDailyLossPct <= 0 {
		cfg.Risk.MaxDailyLossPct = 0.05
	}
	if cfg.Risk.MaxOpenPositions <= 0 {
		cfg.Risk.MaxOpenPositions = 20
	}
	if cfg.Risk.MinEdge <= 0 {
		cfg.Risk.MinEdge = 0.05
	}
	if cfg.Kelly.Fraction <= 0 {
		cfg.Kelly.Fraction = 0.25
	}
	if cfg.Kelly.MaxFraction <= 0 {
		cfg.Kelly.MaxFraction = 0.06
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "polylab.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
