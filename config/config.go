package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/forfunphy/stockmove/internal/domain"
)

// Config es la configuración completa de stockmove.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Backtest BacktestConfig `yaml:"backtest"`
	Playback PlaybackConfig `yaml:"playback"`
	Storage  StorageConfig  `yaml:"storage"`
	API      APIConfig      `yaml:"api"`
	Log      LogConfig      `yaml:"log"`
}

// DataConfig indica las tablas CSV que se cargan al arrancar.
type DataConfig struct {
	Files      []string `yaml:"files"`
	Instrument string   `yaml:"instrument"` // vacío = primer código de los datos
}

// BacktestConfig es la forma YAML de domain.BacktestConfig.
type BacktestConfig struct {
	Strategy       string  `yaml:"strategy"`    // BUY_TODAY_SELL_TOMORROW | WEEKDAY_STRATEGY | MANUAL
	PriceBasis     string  `yaml:"price_basis"` // OPEN | CLOSE
	StartYear      int     `yaml:"start_year"`  // 0 = primer mes de los datos
	StartMonth     int     `yaml:"start_month"` // 1..12, 0 = enero
	BuyWeekday     string  `yaml:"buy_weekday"` // monday..sunday o mon..sun
	SellWeekday    string  `yaml:"sell_weekday"`
	InitialCapital float64 `yaml:"initial_capital"`
}

// PlaybackConfig controla la velocidad inicial y la ventana del gráfico.
type PlaybackConfig struct {
	SpeedMS    int `yaml:"speed_ms"`
	WindowSize int `yaml:"window_size"`
}

// StorageConfig controla dónde se persisten las barras y el diario de trades.
type StorageConfig struct {
	DSN     string `yaml:"dsn"`     // ruta al archivo SQLite, o ":memory:"
	Journal bool   `yaml:"journal"` // registrar trades cerrados por corrida
}

// APIConfig controla la API HTTP de control.
type APIConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
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

// Default devuelve la configuración usada cuando no hay archivo.
func Default() *Config {
	var cfg Config
	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg
}

// Speed devuelve el intervalo entre ticks como time.Duration.
func (c *Config) Speed() time.Duration {
	return time.Duration(c.Playback.SpeedMS) * time.Millisecond
}

// HasStart indica si el archivo fija un mes de inicio.
func (b BacktestConfig) HasStart() bool {
	return b.StartYear != 0
}

// ToDomain convierte la sección backtest y valida el resultado.
func (b BacktestConfig) ToDomain() (domain.BacktestConfig, error) {
	cfg := domain.BacktestConfig{
		Strategy:       domain.StrategyKind(strings.ToUpper(b.Strategy)),
		PriceBasis:     domain.PriceBasis(strings.ToUpper(b.PriceBasis)),
		StartYear:      b.StartYear,
		StartMonth:     time.Month(b.StartMonth),
		InitialCapital: b.InitialCapital,
	}
	if b.StartYear == 0 {
		def := domain.DefaultBacktestConfig()
		cfg.StartYear, cfg.StartMonth = def.StartYear, def.StartMonth
	} else if b.StartMonth == 0 {
		cfg.StartMonth = time.January
	}
	var err error
	if cfg.BuyWeekday, err = parseWeekday(b.BuyWeekday); err != nil {
		return domain.BacktestConfig{}, fmt.Errorf("config.ToDomain: buy_weekday: %w", err)
	}
	if cfg.SellWeekday, err = parseWeekday(b.SellWeekday); err != nil {
		return domain.BacktestConfig{}, fmt.Errorf("config.ToDomain: sell_weekday: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return domain.BacktestConfig{}, fmt.Errorf("config.ToDomain: %w", err)
	}
	return cfg, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown weekday %q", domain.ErrInvalidConfig, s)
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("STOCKMOVE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("STOCKMOVE_API_ADDR"); v != "" {
		cfg.API.Addr = v
	}
	// lista de rutas CSV separadas por coma
	if v := os.Getenv("STOCKMOVE_DATA"); v != "" {
		cfg.Data.Files = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Data.Files = append(cfg.Data.Files, p)
			}
		}
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	def := domain.DefaultBacktestConfig()
	if cfg.Backtest.Strategy == "" {
		cfg.Backtest.Strategy = string(def.Strategy)
	}
	if cfg.Backtest.PriceBasis == "" {
		cfg.Backtest.PriceBasis = string(def.PriceBasis)
	}
	if cfg.Backtest.BuyWeekday == "" {
		cfg.Backtest.BuyWeekday = def.BuyWeekday.String()
	}
	if cfg.Backtest.SellWeekday == "" {
		cfg.Backtest.SellWeekday = def.SellWeekday.String()
	}
	if cfg.Backtest.InitialCapital <= 0 {
		cfg.Backtest.InitialCapital = def.InitialCapital
	}
	if cfg.Playback.SpeedMS <= 0 {
		cfg.Playback.SpeedMS = 100
	}
	if cfg.Playback.WindowSize <= 0 {
		cfg.Playback.WindowSize = 60
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "stockmove.db"
	}
	if cfg.API.Addr == "" {
		cfg.API.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
