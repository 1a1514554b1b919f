package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/cryptodash/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del dashboard.
type Config struct {
	Monitor   MonitorConfig   `yaml:"monitor"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Market    MarketConfig    `yaml:"market"`
	API       APIConfig       `yaml:"api"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
}

// MonitorConfig controla el poll del par vigilado.
type MonitorConfig struct {
	Pair              string  `yaml:"pair"`
	IntervalSeconds   int     `yaml:"interval_seconds"`
	MaxHistory        int     `yaml:"max_history"`    // 0 = serie sin límite
	SeedTimeframe     string  `yaml:"seed_timeframe"` // vacío = no sembrar con velas
	SeedLookbackHours float64 `yaml:"seed_lookback_hours"`
}

// SimulatorConfig son los valores por defecto del simulador DCA.
type SimulatorConfig struct {
	BuyMethod         string   `yaml:"buy_method"`         // limit | market
	SellMethod        string   `yaml:"sell_method"`        // limit | market
	AllocationPercent *float64 `yaml:"allocation_percent"` // nil = 100
	Cycles            int      `yaml:"cycles"`
}

// Allocation devuelve el porcentaje de asignación; 100 si no está configurado.
func (s SimulatorConfig) Allocation() float64 {
	if s.AllocationPercent == nil {
		return 100
	}
	return *s.AllocationPercent
}

// MarketConfig controla la vista de mercado.
type MarketConfig struct {
	Favorites  []string               `yaml:"favorites"`
	Highlights []domain.HighlightRule `yaml:"highlights"`
	MinVolume  float64                `yaml:"min_volume"`
}

// APIConfig contiene los endpoints del exchange.
type APIConfig struct {
	BaseURL  string `yaml:"base_url"`
	DepthURL string `yaml:"depth_url"` // plantilla con %s para el par, opcional
}

// ServerConfig controla la API HTTP.
type ServerConfig struct {
	Addr string `yaml:"addr"` // vacío = sin API HTTP
}

// StorageConfig controla dónde se persisten las observaciones.
type StorageConfig struct {
	DSN           string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
	RetentionDays int    `yaml:"retention_days"`
	PruneCron     string `yaml:"prune_cron"` // expresión cron con segundos
}

// LogConfig controla el formato, nivel y fichero de logging.
type LogConfig struct {
	Level      string `yaml:"level"`  // debug | info | warn | error
	Format     string `yaml:"format"` // text | json
	File       string `yaml:"file"`   // vacío = solo stderr
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Si el YAML no existe se usan los valores por defecto.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// PollInterval devuelve el intervalo de poll como time.Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Monitor.IntervalSeconds) * time.Second
}

// SeedLookback devuelve la ventana de velas usada para sembrar la serie.
func (c *Config) SeedLookback() time.Duration {
	return time.Duration(c.Monitor.SeedLookbackHours * float64(time.Hour))
}

// Retention devuelve la antigüedad máxima de las observaciones guardadas.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Storage.RetentionDays) * 24 * time.Hour
}

// Validate rechaza valores que no tienen sentido.
func (c *Config) Validate() error {
	if _, err := domain.ParseFeeMethod(c.Simulator.BuyMethod); err != nil {
		return fmt.Errorf("simulator.buy_method: %w", err)
	}
	if _, err := domain.ParseFeeMethod(c.Simulator.SellMethod); err != nil {
		return fmt.Errorf("simulator.sell_method: %w", err)
	}
	if a := c.Simulator.Allocation(); a < 0 || a > 100 {
		return fmt.Errorf("simulator.allocation_percent %v outside [0, 100]", a)
	}
	if c.Monitor.MaxHistory < 0 {
		return fmt.Errorf("monitor.max_history %d must be >= 0", c.Monitor.MaxHistory)
	}
	if c.Monitor.SeedTimeframe != "" && c.Monitor.SeedLookbackHours <= 0 {
		return fmt.Errorf("monitor.seed_lookback_hours must be > 0 when seed_timeframe is set")
	}
	for i, r := range c.Market.Highlights {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("market.highlights[%d]: %w", i, err)
		}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q must be text or json", c.Log.Format)
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("DASHBOARD_PAIR"); v != "" {
		cfg.Monitor.Pair = v
	}
	if v := os.Getenv("INDODAX_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Monitor.Pair == "" {
		cfg.Monitor.Pair = "btcidr"
	}
	cfg.Monitor.Pair = strings.ToLower(cfg.Monitor.Pair)
	if cfg.Monitor.IntervalSeconds <= 0 {
		cfg.Monitor.IntervalSeconds = 30
	}
	if cfg.Monitor.SeedTimeframe != "" && cfg.Monitor.SeedLookbackHours == 0 {
		cfg.Monitor.SeedLookbackHours = 24
	}
	if cfg.Simulator.BuyMethod == "" {
		cfg.Simulator.BuyMethod = "limit"
	}
	if cfg.Simulator.SellMethod == "" {
		cfg.Simulator.SellMethod = "limit"
	}
	if cfg.Simulator.AllocationPercent == nil {
		alloc := 100.0
		cfg.Simulator.AllocationPercent = &alloc
	}
	if cfg.Simulator.Cycles <= 0 {
		cfg.Simulator.Cycles = 1
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://indodax.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "cryptodash.db"
	}
	if cfg.Storage.RetentionDays <= 0 {
		cfg.Storage.RetentionDays = 7
	}
	if cfg.Storage.PruneCron == "" {
		cfg.Storage.PruneCron = "0 0 * * * *" // cada hora
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = 20
	}
	if cfg.Log.MaxBackups <= 0 {
		cfg.Log.MaxBackups = 3
	}
	if cfg.Log.MaxAgeDays <= 0 {
		cfg.Log.MaxAgeDays = 14
	}
}
