package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del bot.
type Config struct {
	Trading  TradingConfig  `yaml:"trading"`
	Universe UniverseConfig `yaml:"universe"`
	Options  OptionsConfig  `yaml:"options"`
	API      APIConfig      `yaml:"api"`
	Notify   NotifyConfig   `yaml:"notify"`
	Storage  StorageConfig  `yaml:"storage"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Log      LogConfig      `yaml:"log"`
}

// TradingConfig controla el sizing y la gestión de riesgo.
type TradingConfig struct {
	RiskPerTrade         float64 `yaml:"risk_per_trade"`         // fracción del cash por trade
	StopLossPct          float64 `yaml:"stop_loss_pct"`          // caída desde el precio de entrada que fuerza la venta
	TradeIntervalMinutes int     `yaml:"trade_interval_minutes"`
	RiskIntervalMinutes  int     `yaml:"risk_interval_minutes"`
}

// UniverseConfig controla la selección del universo de subyacentes.
type UniverseConfig struct {
	TopN          int      `yaml:"top_n"`
	MinPrice      float64  `yaml:"min_price"`
	MaxPrice      float64  `yaml:"max_price"`
	MinVolume     int64    `yaml:"min_volume"`
	MaxBarAgeDays int      `yaml:"max_bar_age_days"` // barras más viejas se tratan como símbolo inactivo
	Exchanges     []string `yaml:"exchanges"`
}

// OptionsConfig controla los filtros de contratos para la selección ATM.
type OptionsConfig struct {
	MinDaysToExpiry int     `yaml:"min_days_to_expiry"`
	MinPrice        float64 `yaml:"min_price"`
	MinVolume       int64   `yaml:"min_volume"`
}

// APIConfig contiene los base URLs y credenciales de Alpaca.
// Las credenciales solo se leen del entorno, nunca del YAML.
type APIConfig struct {
	TradingBase string `yaml:"trading_base"`
	DataBase    string `yaml:"data_base"`
	KeyID       string `yaml:"-"`
	SecretKey   string `yaml:"-"`
}

// NotifyConfig contiene el webhook de Discord. Solo entorno.
type NotifyConfig struct {
	WebhookURL string `yaml:"-"`
}

// StorageConfig controla dónde se persiste el journal de trades.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// ScheduleConfig contiene los trabajos a hora fija (hora local HH:MM).
type ScheduleConfig struct {
	UniverseRefresh string `yaml:"universe_refresh"`
	DailySummary    string `yaml:"daily_summary"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las credenciales y el webhook vienen siempre del entorno.
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

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// TradeInterval devuelve el intervalo del ciclo de trading como time.Duration.
func (c *Config) TradeInterval() time.Duration {
	return time.Duration(c.Trading.TradeIntervalMinutes) * time.Minute
}

// RiskInterval devuelve el intervalo del chequeo de stop-loss.
func (c *Config) RiskInterval() time.Duration {
	return time.Duration(c.Trading.RiskIntervalMinutes) * time.Minute
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	cfg.API.KeyID = os.Getenv("APCA_API_KEY_ID")
	cfg.API.SecretKey = os.Getenv("APCA_API_SECRET_KEY")
	cfg.Notify.WebhookURL = os.Getenv("DISCORD_WEBHOOK_URL")

	if v := os.Getenv("APCA_API_BASE_URL"); v != "" {
		cfg.API.TradingBase = v
	}
	if v := os.Getenv("APCA_API_DATA_URL"); v != "" {
		cfg.API.DataBase = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Trading.RiskPerTrade <= 0 {
		cfg.Trading.RiskPerTrade = 0.02
	}
	if cfg.Trading.StopLossPct <= 0 {
		cfg.Trading.StopLossPct = 0.35
	}
	if cfg.Trading.TradeIntervalMinutes <= 0 {
		cfg.Trading.TradeIntervalMinutes = 30
	}
	if cfg.Trading.RiskIntervalMinutes <= 0 {
		cfg.Trading.RiskIntervalMinutes = 30
	}
	if cfg.Universe.TopN <= 0 {
		cfg.Universe.TopN = 10
	}
	if cfg.Universe.MinPrice <= 0 {
		cfg.Universe.MinPrice = 3.0
	}
	if cfg.Universe.MaxPrice <= 0 {
		cfg.Universe.MaxPrice = 50.0
	}
	if cfg.Universe.MinVolume <= 0 {
		cfg.Universe.MinVolume = 1_000_000
	}
	if cfg.Universe.MaxBarAgeDays <= 0 {
		cfg.Universe.MaxBarAgeDays = 3
	}
	if len(cfg.Universe.Exchanges) == 0 {
		cfg.Universe.Exchanges = []string{"NYSE", "NASDAQ"}
	}
	if cfg.Options.MinDaysToExpiry <= 0 {
		cfg.Options.MinDaysToExpiry = 3
	}
	if cfg.Options.MinPrice <= 0 {
		cfg.Options.MinPrice = 0.50
	}
	if cfg.Options.MinVolume <= 0 {
		cfg.Options.MinVolume = 50
	}
	if cfg.API.TradingBase == "" {
		cfg.API.TradingBase = "https://paper-api.alpaca.markets"
	}
	if cfg.API.DataBase == "" {
		cfg.API.DataBase = "https://data.alpaca.markets"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "optionswing.db"
	}
	if cfg.Schedule.UniverseRefresh == "" {
		cfg.Schedule.UniverseRefresh = "09:45"
	}
	if cfg.Schedule.DailySummary == "" {
		cfg.Schedule.DailySummary = "20:00"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// validate comprueba lo que no puede arrancar sin estar presente.
func (c *Config) validate() error {
	if c.API.KeyID == "" || c.API.SecretKey == "" {
		return errors.New("missing APCA_API_KEY_ID / APCA_API_SECRET_KEY in environment")
	}
	for _, hhmm := range []string{c.Schedule.UniverseRefresh, c.Schedule.DailySummary} {
		if _, err := time.Parse("15:04", hhmm); err != nil {
			return fmt.Errorf("invalid schedule time %q (want HH:MM)", hhmm)
		}
	}
	return nil
}
